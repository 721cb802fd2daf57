// Package tag parses raw hierarchical identifiers into canonical tags.
//
// A tag is an ordered sequence of (aspect, token) pairs parsed from a raw
// string under a separator grammar (package aspects). Two raw strings that
// normalize to the same canonical form always resolve to the same *Tag
// instance via the Resolver cache, which makes pointer identity a reliable
// equality check for everything keyed on tags downstream.
package tag

import (
	"strings"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph/aspects"
)

// namespace for deterministic tag GUIDs. Stable across sessions so the same
// canonical tag always carries the same GUID.
var nsTag = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.tag"))

// Aspect is one parsed (separator, token) pair of a tag, e.g. {"+", "A1"}.
type Aspect struct {
	Separator string
	Value     string
}

// String returns the aspect as it appears in a canonical tag.
func (a Aspect) String() string { return a.Separator + a.Value }

// Tag is a parsed hierarchical identifier. Tags are immutable; they are
// created only by a Resolver and shared between every entity derived from
// the same canonical string.
type Tag struct {
	canonical string
	aspects   []Aspect
	guid      uuid.UUID
}

func newTag(parsed []Aspect) *Tag {
	var b strings.Builder
	for _, a := range parsed {
		b.WriteString(a.Separator)
		b.WriteString(a.Value)
	}
	canonical := b.String()
	return &Tag{
		canonical: canonical,
		aspects:   parsed,
		guid:      uuid.NewSHA1(nsTag, []byte(canonical)),
	}
}

// Canonical returns the canonical string form, rebuilt from the parsed
// aspects rather than the raw input.
func (t *Tag) Canonical() string { return t.canonical }

// String returns the canonical string form.
func (t *Tag) String() string { return t.canonical }

// GUID returns the deterministic identifier derived from the canonical
// string.
func (t *Tag) GUID() uuid.UUID { return t.guid }

// Aspects returns the parsed (separator, token) pairs in document order.
func (t *Tag) Aspects() []Aspect {
	out := make([]Aspect, len(t.aspects))
	copy(out, t.aspects)
	return out
}

// Len returns the number of parsed aspects.
func (t *Tag) Len() int { return len(t.aspects) }

// Parts groups the aspect tokens by separator, preserving the order in which
// tokens appeared for each separator.
func (t *Tag) Parts() map[string][]string {
	parts := make(map[string][]string)
	for _, a := range t.aspects {
		parts[a.Separator] = append(parts[a.Separator], a.Value)
	}
	return parts
}

// Values returns the tokens recorded for the given separator, in order.
func (t *Tag) Values(sep string) []string {
	var vals []string
	for _, a := range t.aspects {
		if a.Separator == sep {
			vals = append(vals, a.Value)
		}
	}
	return vals
}

// Reconstruct rebuilds the tag string in grammar priority order rather than
// document order. Targets use this as their display name so "+B2=A1" and
// "=A1+B2" render identically.
func Reconstruct(t *Tag, cfg *aspects.Config) string {
	parts := t.Parts()
	var b strings.Builder
	for _, sep := range cfg.Separators() {
		for _, val := range parts[sep] {
			b.WriteString(sep)
			b.WriteString(val)
		}
	}
	return b.String()
}
