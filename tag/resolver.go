package tag

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/indugraph/indugraph/aspects"
)

// Sentinel errors for tag resolution. All of them are recoverable: callers
// are expected to skip the offending raw string and continue with the rest
// of the page.
var (
	// ErrEmptyInput indicates a raw string that is empty after trimming.
	ErrEmptyInput = errors.New("tag: empty input")

	// ErrNoSeparator indicates a raw string containing none of the
	// configured separators.
	ErrNoSeparator = errors.New("tag: no configured separator found")

	// ErrLeadingText indicates text appearing before the first separator.
	ErrLeadingText = errors.New("tag: text before first separator")

	// ErrEmptyToken indicates a separator immediately followed by another
	// separator or the end of input.
	ErrEmptyToken = errors.New("tag: empty token after separator")
)

// Resolver parses raw identifier strings against a separator grammar and
// caches the resulting tags by canonical string. Equal canonical strings
// always yield the same *Tag instance.
//
// A Resolver is safe for concurrent use.
type Resolver struct {
	cfg    *aspects.Config
	sepRe  *regexp.Regexp
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Tag
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for parse diagnostics. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver for the given grammar.
func NewResolver(cfg *aspects.Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		sepRe:  separatorPattern(cfg),
		logger: slog.Default(),
		cache:  make(map[string]*Tag),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// separatorPattern compiles the alternation of configured separators.
// Longer separators are listed first so that overlapping tokens such as "="
// and "==" match longest-first.
func separatorPattern(cfg *aspects.Config) *regexp.Regexp {
	seps := cfg.Separators()
	sort.Slice(seps, func(i, j int) bool { return len(seps[i]) > len(seps[j]) })
	quoted := make([]string, len(seps))
	for i, sep := range seps {
		quoted[i] = regexp.QuoteMeta(sep)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Config returns the grammar this resolver parses against.
func (r *Resolver) Config() *aspects.Config { return r.cfg }

// Resolve parses raw into a Tag. Any pin suffix (everything from the
// terminal separator onward) is discarded first; use SplitPin when the pin
// part is needed.
//
// Resolve fails with ErrEmptyInput, ErrNoSeparator, ErrLeadingText or
// ErrEmptyToken; all failures leave the cache untouched.
func (r *Resolver) Resolve(raw string) (*Tag, error) {
	base, _ := r.SplitPin(raw)
	parsed, err := r.parse(base)
	if err != nil {
		r.logger.Warn("tag resolution failed", "raw", raw, "error", err)
		return nil, err
	}
	return r.intern(newTag(parsed)), nil
}

// ResolveWithFooter parses raw after completing it with higher-priority
// aspects taken from the page footer. Aspects the raw string already carries
// are never overridden; only levels above its highest level are prepended.
func (r *Resolver) ResolveWithFooter(raw string, footer Footer) (*Tag, error) {
	base, _ := r.SplitPin(raw)
	prefix := r.footerPrefix(base, footer)
	if prefix != "" {
		r.logger.Debug("completed tag from footer", "raw", raw, "prefix", prefix)
	}
	return r.Resolve(prefix + base)
}

// SplitPin splits raw at the grammar's terminal separator. The pin part
// keeps its leading terminal separator ("=A+B:1:2" -> "=A+B", ":1:2"); it is
// empty when raw has no pin suffix.
func (r *Resolver) SplitPin(raw string) (base, pin string) {
	term := r.cfg.Terminal()
	if i := strings.Index(raw, term); i != -1 {
		return raw[:i], raw[i:]
	}
	return raw, ""
}

// Cached returns the cached tag for a canonical string, if present.
func (r *Resolver) Cached(canonical string) (*Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.cache[canonical]
	return t, ok
}

// Tags returns every cached tag. Order is unspecified.
func (r *Resolver) Tags() []*Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tag, 0, len(r.cache))
	for _, t := range r.cache {
		out = append(out, t)
	}
	return out
}

// intern returns the canonical shared instance for t, storing it on first
// sight. Losing a concurrent first-insert race returns the winner.
func (r *Resolver) intern(t *Tag) *Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[t.canonical]; ok {
		return existing
	}
	r.cache[t.canonical] = t
	return t
}

// parse tokenizes a pin-free raw string into ordered aspects.
func (r *Resolver) parse(raw string) ([]Aspect, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyInput
	}

	locs := r.sepRe.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSeparator, raw)
	}
	if locs[0][0] != 0 {
		return nil, fmt.Errorf("%w: %q", ErrLeadingText, raw)
	}

	parsed := make([]Aspect, 0, len(locs))
	for i, loc := range locs {
		sep := raw[loc[0]:loc[1]]
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		token := strings.TrimSpace(raw[loc[1]:end])
		if token == "" {
			return nil, fmt.Errorf("%w: separator %q in %q", ErrEmptyToken, sep, raw)
		}
		parsed = append(parsed, Aspect{Separator: sep, Value: token})
	}
	return parsed, nil
}

// footerPrefix computes the aspect prefix to prepend to a partial tag. For
// each grammar level in priority order: stop at the first level the tag
// itself provides, otherwise borrow the footer's value for that level.
func (r *Resolver) footerPrefix(base string, footer Footer) string {
	own, err := r.parse(base)
	if err != nil {
		// Leave the raw string as-is; Resolve will report the failure.
		return ""
	}
	ownSeps := make(map[string]bool, len(own))
	for _, a := range own {
		ownSeps[a.Separator] = true
	}

	footerParts := footer.parts(r)

	var b strings.Builder
	for _, sep := range r.cfg.Separators() {
		if ownSeps[sep] {
			break
		}
		if val, ok := footerParts[sep]; ok {
			b.WriteString(sep)
			b.WriteString(val)
		}
	}
	return b.String()
}
