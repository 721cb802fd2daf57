package graph

import (
	"strings"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph/attr"
)

// Pin is one level of a named contact point chain on a target
// (connector -> sub-pin -> ...). Every level is a first-class cached entity;
// a chain ["A", "B"] shares its ["A"] node with every other chain passing
// through it.
//
// The owner and parent are fixed at construction and never rebound.
type Pin struct {
	owner  *Target
	parent *Pin
	name   string
	guid   uuid.UUID
	attrs  attr.Set
}

// NewPin builds a chain node for name under parent (nil for a root-level
// pin) on owner. The GUID derives from the owner identity and the full
// chain, so the same chain on the same target always carries the same GUID.
func NewPin(owner *Target, parent *Pin, name string) *Pin {
	p := &Pin{owner: owner, parent: parent, name: name}
	p.guid = deriveGUID(nsPin, append([]string{owner.GUID().String()}, p.Chain()...)...)
	return p
}

// Owner returns the target this pin belongs to.
func (p *Pin) Owner() *Target { return p.owner }

// Parent returns the enclosing chain level, or nil for a root-level pin.
func (p *Pin) Parent() *Pin { return p.parent }

// Name returns this level's token.
func (p *Pin) Name() string { return p.name }

// GUID returns the stable identifier.
func (p *Pin) GUID() uuid.UUID { return p.guid }

// Attributes gives access to the merged attribute set.
func (p *Pin) Attributes() *attr.Set { return &p.attrs }

// MergeAttributes unions the given attributes into the pin, idempotently.
func (p *Pin) MergeAttributes(attrs []attr.Attribute) {
	p.attrs.AddAll(attrs)
}

// Chain returns the name tokens from the root level down to this node.
func (p *Pin) Chain() []string {
	var rev []string
	for n := p; n != nil; n = n.parent {
		rev = append(rev, n.name)
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}

// Depth returns the number of chain levels, 1 for a root-level pin.
func (p *Pin) Depth() int {
	d := 0
	for n := p; n != nil; n = n.parent {
		d++
	}
	return d
}

// EndpointLabel implements Endpoint.
func (p *Pin) EndpointLabel() string {
	return p.owner.EndpointLabel() + ":" + strings.Join(p.Chain(), ":")
}

// String returns the owner tag plus the chain, separated by ":".
func (p *Pin) String() string { return p.EndpointLabel() }
