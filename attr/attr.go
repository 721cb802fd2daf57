// Package attr implements typed key/value facts attachable to graph
// entities. An attribute's identity is the (name, kind, value) triple:
// re-deriving the same fact on another page merges to a no-op instead of
// duplicating it.
package attr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// namespace for deterministic attribute GUIDs.
var nsAttr = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.attr"))

// Sentinel errors for attribute construction.
var (
	// ErrUnknownKind indicates an attribute kind outside the registered set.
	ErrUnknownKind = errors.New("attr: unknown attribute kind")

	// ErrInvalidValue indicates a value incompatible with the requested kind.
	ErrInvalidValue = errors.New("attr: invalid value for kind")
)

// Kind categorizes an attribute's value shape.
type Kind string

const (
	// KindSimple is a plain string fact (color, cross-section, remark).
	KindSimple Kind = "simple"

	// KindRoutingTracks lists the routing tracks a wire passes through.
	KindRoutingTracks Kind = "routing_tracks"

	// KindPLCAddress describes a PLC address with free-form metadata.
	KindPLCAddress Kind = "plc_address"

	// KindLocation records where on a source page the fact was printed.
	KindLocation Kind = "location"
)

// Validate checks that the kind is one of the registered kinds.
func (k Kind) Validate() error {
	switch k {
	case KindSimple, KindRoutingTracks, KindPLCAddress, KindLocation:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// String returns the kind's wire name.
func (k Kind) String() string { return string(k) }

// Attribute is a typed fact with value identity. Implementations are
// immutable; equality is defined by Key().
type Attribute interface {
	// Name is the fact's key (e.g. "color", "cross-section").
	Name() string

	// Kind reports the value shape.
	Kind() Kind

	// Value returns the fact's value in its natural Go type.
	Value() any

	// Key is the canonical identity string for the (name, kind, value)
	// triple. Two attributes with equal keys are the same fact.
	Key() string

	// GUID is the deterministic identifier derived from Key.
	GUID() uuid.UUID

	// Searchable returns flattened field/value pairs for indexing.
	Searchable() map[string]string
}

// guidFor derives the deterministic GUID for an identity key.
func guidFor(key string) uuid.UUID {
	return uuid.NewSHA1(nsAttr, []byte(key))
}

// key builds the canonical identity string for a kind, name and canonical
// value form.
func key(kind Kind, name, value string) string {
	return string(kind) + ":" + name + "=" + value
}

// New constructs an attribute of the given kind from a loosely-typed value,
// as received from document plugins. Value expectations per kind:
//
//   - KindSimple: string
//   - KindRoutingTracks: []string, or a ";"-separated string
//   - KindPLCAddress: map[string]string
//   - KindLocation: Position
func New(kind Kind, name string, value any) (Attribute, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	switch kind {
	case KindSimple:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants string, got %T", ErrInvalidValue, kind, value)
		}
		return Simple(name, s), nil

	case KindRoutingTracks:
		switch v := value.(type) {
		case []string:
			return RoutingTracks(name, v), nil
		case string:
			return RoutingTracks(name, strings.Split(v, ";")), nil
		}
		return nil, fmt.Errorf("%w: %s wants []string or string, got %T", ErrInvalidValue, kind, value)

	case KindPLCAddress:
		m, ok := value.(map[string]string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants map[string]string, got %T", ErrInvalidValue, kind, value)
		}
		return PLCAddress(name, m), nil

	case KindLocation:
		p, ok := value.(Position)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants Position, got %T", ErrInvalidValue, kind, value)
		}
		return Location(name, p), nil
	}
	// Validate covered every kind above.
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// Set is a deduplicating attribute collection. The zero value is empty and
// usable. Set is not safe for concurrent mutation; owning registries
// serialize access.
type Set struct {
	byKey map[string]Attribute
}

// NewSet builds a set from the given attributes, deduplicating by key.
func NewSet(attrs ...Attribute) Set {
	var s Set
	s.AddAll(attrs)
	return s
}

// Add inserts a single attribute. Re-adding an existing fact is a no-op.
// Reports whether the attribute was newly inserted.
func (s *Set) Add(a Attribute) bool {
	if a == nil {
		return false
	}
	if s.byKey == nil {
		s.byKey = make(map[string]Attribute)
	}
	if _, ok := s.byKey[a.Key()]; ok {
		return false
	}
	s.byKey[a.Key()] = a
	return true
}

// AddAll inserts each attribute in order.
func (s *Set) AddAll(attrs []Attribute) {
	for _, a := range attrs {
		s.Add(a)
	}
}

// Merge unions another set into this one. Idempotent: merging the same set
// twice leaves the receiver unchanged after the first merge.
func (s *Set) Merge(other Set) {
	for _, a := range other.byKey {
		s.Add(a)
	}
}

// Contains reports whether the set holds a fact with the same identity.
func (s *Set) Contains(a Attribute) bool {
	if a == nil || s.byKey == nil {
		return false
	}
	_, ok := s.byKey[a.Key()]
	return ok
}

// Get returns the attributes carrying the given name, in stable order.
func (s *Set) Get(name string) []Attribute {
	var out []Attribute
	for _, a := range s.List() {
		if a.Name() == name {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of distinct facts.
func (s *Set) Len() int { return len(s.byKey) }

// List returns all facts ordered by identity key, so enumeration output is
// stable across runs.
func (s *Set) List() []Attribute {
	keys := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Attribute, len(keys))
	for i, k := range keys {
		out[i] = s.byKey[k]
	}
	return out
}

// Searchable flattens every fact's searchable entries into one map. Distinct
// facts sharing a field name keep every value, ordered by identity key.
func (s *Set) Searchable() map[string][]string {
	out := make(map[string][]string)
	for _, a := range s.List() {
		for k, v := range a.Searchable() {
			out[k] = append(out[k], v)
		}
	}
	return out
}
