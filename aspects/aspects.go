// Package aspects defines the separator grammar used to parse hierarchical
// component tags. A grammar is an ordered list of levels, each binding a
// separator token (e.g. "=", "+", "-") to a named aspect (e.g. "Functional",
// "Location", "Product"). The order of levels is the priority order used both
// for tokenizing raw tag strings and for reconstructing canonical tags.
package aspects

import (
	"errors"
	"fmt"
)

// Sentinel errors for grammar construction and loading.
var (
	// ErrNoLevels indicates a grammar with no configured levels.
	ErrNoLevels = errors.New("aspects: grammar has no levels")

	// ErrDuplicateSeparator indicates two levels sharing a separator token.
	ErrDuplicateSeparator = errors.New("aspects: duplicate separator")

	// ErrEmptyLevel indicates a level with an empty separator or aspect name.
	ErrEmptyLevel = errors.New("aspects: empty separator or aspect name")
)

// Level binds one separator token to one named aspect.
type Level struct {
	// Separator is the token that introduces this aspect in a raw tag
	// (e.g. "+" in "+A1"). Multi-rune separators are allowed; longer
	// separators win over shorter prefixes during tokenization.
	Separator string `yaml:"separator" json:"Separator"`

	// Aspect is the human-readable name of the classification dimension
	// (e.g. "Location").
	Aspect string `yaml:"aspect" json:"Aspect"`
}

// Config is an ordered separator grammar. The zero value is not usable;
// construct one with New, Load, Parse or Default.
//
// Level order is significant: earlier levels have higher priority. The
// priority order drives footer completion and canonical reconstruction.
type Config struct {
	levels []Level
	bySep  map[string]Level
}

// New builds a grammar from ordered levels. It fails if no levels are given,
// if a separator or aspect name is empty, or if a separator repeats.
func New(levels ...Level) (*Config, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}

	bySep := make(map[string]Level, len(levels))
	for _, lvl := range levels {
		if lvl.Separator == "" || lvl.Aspect == "" {
			return nil, fmt.Errorf("%w: %+v", ErrEmptyLevel, lvl)
		}
		if _, dup := bySep[lvl.Separator]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSeparator, lvl.Separator)
		}
		bySep[lvl.Separator] = lvl
	}

	cp := make([]Level, len(levels))
	copy(cp, levels)
	return &Config{levels: cp, bySep: bySep}, nil
}

// Default returns the reference grammar for industrial schematics:
// functional (=), location (+), product (-), pin (:), subdivision (/)
// and document (&) aspects, in that priority order.
func Default() *Config {
	cfg, err := New(
		Level{Separator: "=", Aspect: "Functional"},
		Level{Separator: "+", Aspect: "Location"},
		Level{Separator: "-", Aspect: "Product"},
		Level{Separator: ":", Aspect: "Pin"},
		Level{Separator: "/", Aspect: "Subdivision"},
		Level{Separator: "&", Aspect: "Document"},
	)
	if err != nil {
		// The default grammar is a literal; it cannot fail validation.
		panic(err)
	}
	return cfg
}

// Levels returns the configured levels in priority order.
func (c *Config) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Len returns the number of configured levels.
func (c *Config) Len() int { return len(c.levels) }

// Separators returns the separator tokens in priority order.
func (c *Config) Separators() []string {
	out := make([]string, len(c.levels))
	for i, lvl := range c.levels {
		out[i] = lvl.Separator
	}
	return out
}

// Aspects returns the aspect names in priority order.
func (c *Config) Aspects() []string {
	out := make([]string, len(c.levels))
	for i, lvl := range c.levels {
		out[i] = lvl.Aspect
	}
	return out
}

// Contains reports whether sep is a configured separator.
func (c *Config) Contains(sep string) bool {
	_, ok := c.bySep[sep]
	return ok
}

// Aspect returns the aspect name bound to sep, or "" if sep is not
// configured.
func (c *Config) Aspect(sep string) string {
	return c.bySep[sep].Aspect
}

// Priority returns the priority index of sep (0 = highest), or -1 if sep is
// not configured.
func (c *Config) Priority(sep string) int {
	for i, lvl := range c.levels {
		if lvl.Separator == sep {
			return i
		}
	}
	return -1
}

// SeparatorsThrough returns all separators from the highest priority down to
// the lowest-priority separator present in seps. With an empty seps it
// returns every separator. Unknown separators in seps are ignored.
//
// This is the completion window used when merging footer aspects into a
// partial tag: only aspects above the tag's own highest level may be
// prepended.
func (c *Config) SeparatorsThrough(seps []string) []string {
	lowest := -1
	for _, sep := range seps {
		if p := c.Priority(sep); p > lowest {
			lowest = p
		}
	}
	if lowest == -1 {
		return c.Separators()
	}
	return c.Separators()[:lowest+1]
}

// Terminal returns the separator that marks the transition from a target tag
// to a pin chain. It is the configured "Pin" aspect separator, or ":" when no
// level is named Pin.
func (c *Config) Terminal() string {
	for _, lvl := range c.levels {
		if lvl.Aspect == "Pin" {
			return lvl.Separator
		}
	}
	return ":"
}
