package graph

import (
	"github.com/google/uuid"
	"github.com/indugraph/indugraph/attr"
)

// VirtualLinkName names links that belong to no cable.
const VirtualLinkName = "virtual_link"

// Link is an undirected wiring relation between exactly two pins. Identity
// is the unordered pin pair: Link(a, b) and Link(b, a) are the same link.
// The name (usually the owning cable's tag) is incidental data, kept from
// the first derivation.
type Link struct {
	a, b  *Pin
	name  string
	guid  uuid.UUID
	attrs attr.Set
}

// NewLink builds a link between two pins. The pair is canonicalized by GUID
// order before the identity is computed, so argument order is irrelevant.
func NewLink(a, b *Pin, name string, attrs ...attr.Attribute) *Link {
	lo, _ := orderPair(a.GUID(), b.GUID())
	if lo != a.GUID().String() {
		a, b = b, a
	}
	if name == "" {
		name = VirtualLinkName
	}
	return &Link{
		a:     a,
		b:     b,
		name:  name,
		guid:  deriveGUID(nsLink, a.GUID().String(), b.GUID().String()),
		attrs: attr.NewSet(attrs...),
	}
}

// LinkKey returns the registry cache key for an unordered pin pair.
func LinkKey(a, b *Pin) string {
	lo, hi := orderPair(a.GUID(), b.GUID())
	return lo + "|" + hi
}

// Key returns the registry cache key for this link's identity.
func (l *Link) Key() string { return LinkKey(l.a, l.b) }

// Pins returns the two endpoints in canonical order.
func (l *Link) Pins() (*Pin, *Pin) { return l.a, l.b }

// Other returns the endpoint opposite to p, or nil when p is not an
// endpoint of this link.
func (l *Link) Other(p *Pin) *Pin {
	switch p {
	case l.a:
		return l.b
	case l.b:
		return l.a
	}
	return nil
}

// Name returns the link's incidental name.
func (l *Link) Name() string { return l.name }

// GUID returns the stable identifier.
func (l *Link) GUID() uuid.UUID { return l.guid }

// Attributes gives access to the merged attribute set.
func (l *Link) Attributes() *attr.Set { return &l.attrs }

// MergeAttributes unions the given attributes into the link, idempotently.
func (l *Link) MergeAttributes(attrs []attr.Attribute) {
	l.attrs.AddAll(attrs)
}
