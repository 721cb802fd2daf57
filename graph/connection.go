package graph

import (
	"sort"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph/attr"
)

// Endpoint is anything a connection can terminate on: a whole target or a
// specific pin.
type Endpoint interface {
	// GUID returns the endpoint's stable identifier.
	GUID() uuid.UUID

	// EndpointLabel returns a human-readable address for the endpoint.
	EndpointLabel() string
}

// virtualCableKey stands in for the cable GUID of cable-less connections.
const virtualCableKey = "virtual"

// Connection is an aggregate relation between two endpoints, optionally
// bound to a cable and composed of zero or more links. Identity is the
// unordered endpoint pair plus the cable identity; a nil cable is its own
// distinct identity ("virtual"). Self-connections (both endpoints equal)
// are valid.
type Connection struct {
	a, b  Endpoint
	cable *Target
	guid  uuid.UUID
	links map[uuid.UUID]*Link
	attrs attr.Set
}

// NewConnection builds a connection between two endpoints, through the given
// cable (nil for a virtual connection). The endpoint pair is canonicalized
// before the identity is computed.
func NewConnection(a, b Endpoint, cable *Target, attrs ...attr.Attribute) *Connection {
	lo, _ := orderPair(a.GUID(), b.GUID())
	if lo != a.GUID().String() {
		a, b = b, a
	}
	return &Connection{
		a:     a,
		b:     b,
		cable: cable,
		guid:  deriveGUID(nsConnection, a.GUID().String(), b.GUID().String(), cableKey(cable)),
		links: make(map[uuid.UUID]*Link),
		attrs: attr.NewSet(attrs...),
	}
}

func cableKey(cable *Target) string {
	if cable == nil {
		return virtualCableKey
	}
	return cable.GUID().String()
}

// ConnectionKey returns the registry cache key for an unordered endpoint
// pair and cable identity.
func ConnectionKey(a, b Endpoint, cable *Target) string {
	lo, hi := orderPair(a.GUID(), b.GUID())
	return lo + "|" + hi + "|" + cableKey(cable)
}

// Key returns the registry cache key for this connection's identity.
func (c *Connection) Key() string { return ConnectionKey(c.a, c.b, c.cable) }

// Endpoints returns the two endpoints in canonical order.
func (c *Connection) Endpoints() (Endpoint, Endpoint) { return c.a, c.b }

// Cable returns the cable target, or nil for a virtual connection.
func (c *Connection) Cable() *Target { return c.cable }

// Virtual reports whether the connection has no cable identity.
func (c *Connection) Virtual() bool { return c.cable == nil }

// SelfConnection reports whether both endpoints are the same entity.
func (c *Connection) SelfConnection() bool { return c.a.GUID() == c.b.GUID() }

// GUID returns the stable identifier.
func (c *Connection) GUID() uuid.UUID { return c.guid }

// AddLink records a link as part of this connection. Re-adding a link with
// the same identity is a no-op.
func (c *Connection) AddLink(l *Link) {
	if l == nil {
		return
	}
	c.links[l.GUID()] = l
}

// MergeLinks unions another connection's link set into this one.
func (c *Connection) MergeLinks(links []*Link) {
	for _, l := range links {
		c.AddLink(l)
	}
}

// Links returns the member links ordered by GUID.
func (c *Connection) Links() []*Link {
	out := make([]*Link, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GUID().String() < out[j].GUID().String()
	})
	return out
}

// Attributes gives access to the merged attribute set.
func (c *Connection) Attributes() *attr.Set { return &c.attrs }

// MergeAttributes unions the given attributes into the connection,
// idempotently.
func (c *Connection) MergeAttributes(attrs []attr.Attribute) {
	c.attrs.AddAll(attrs)
}
