package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/tag"
)

func mustTag(t *testing.T, raw string) *tag.Tag {
	t.Helper()
	tg, err := tag.NewResolver(aspects.Default()).Resolve(raw)
	require.NoError(t, err)
	return tg
}

func TestTargetKindValidate(t *testing.T) {
	for _, k := range []TargetKind{KindDevice, KindStrip, KindCable, KindOther} {
		assert.NoError(t, k.Validate())
	}
	assert.Error(t, TargetKind("motor").Validate())
	assert.Error(t, TargetKind("").Validate())
}

func TestTargetIdentity(t *testing.T) {
	tg := mustTag(t, "=A1+K1")

	a := NewTarget(tg, KindDevice)
	b := NewTarget(tg, KindDevice)
	assert.Equal(t, a.GUID(), b.GUID())
	assert.Equal(t, a.Key(), b.Key())

	// Kind is part of the identity.
	c := NewTarget(tg, KindStrip)
	assert.NotEqual(t, a.GUID(), c.GUID())
	assert.NotEqual(t, a.Key(), c.Key())

	d := NewTarget(mustTag(t, "=A1+K2"), KindDevice)
	assert.NotEqual(t, a.GUID(), d.GUID())
}

func TestTargetName(t *testing.T) {
	cfg := aspects.Default()
	tg := mustTag(t, "+K1=A1")

	target := NewTarget(tg, KindDevice)
	assert.Equal(t, "+K1=A1", target.Tag().Canonical())
	assert.Equal(t, "=A1+K1", target.Name(cfg))
	assert.Equal(t, "+K1=A1", target.EndpointLabel())
}

func TestTargetAttributes(t *testing.T) {
	target := NewTarget(mustTag(t, "=A1"), KindDevice, attr.Simple("color", "red"))
	require.Equal(t, 1, target.Attributes().Len())

	target.MergeAttributes([]attr.Attribute{
		attr.Simple("color", "red"),
		attr.Simple("size", "m"),
	})
	assert.Equal(t, 2, target.Attributes().Len())

	// Attributes never affect identity.
	bare := NewTarget(mustTag(t, "=A1"), KindDevice)
	assert.Equal(t, bare.GUID(), target.GUID())
}

func TestPinChain(t *testing.T) {
	owner := NewTarget(mustTag(t, "=A1+K1"), KindDevice)

	p1 := NewPin(owner, nil, "1")
	p2 := NewPin(owner, p1, "a")
	p3 := NewPin(owner, p2, "x")

	assert.Equal(t, []string{"1"}, p1.Chain())
	assert.Equal(t, []string{"1", "a"}, p2.Chain())
	assert.Equal(t, []string{"1", "a", "x"}, p3.Chain())
	assert.Equal(t, 1, p1.Depth())
	assert.Equal(t, 3, p3.Depth())
	assert.Same(t, p2, p3.Parent())
	assert.Same(t, owner, p3.Owner())

	assert.Equal(t, "=A1+K1:1:a:x", p3.EndpointLabel())
}

func TestPinIdentity(t *testing.T) {
	owner := NewTarget(mustTag(t, "=A1+K1"), KindDevice)

	a := NewPin(owner, nil, "1")
	b := NewPin(owner, nil, "1")
	assert.Equal(t, a.GUID(), b.GUID())

	// Same name under a different parent is a different pin.
	parent := NewPin(owner, nil, "2")
	c := NewPin(owner, parent, "1")
	assert.NotEqual(t, a.GUID(), c.GUID())

	// Same chain under a different owner is a different pin.
	other := NewTarget(mustTag(t, "=A1+K2"), KindDevice)
	d := NewPin(other, nil, "1")
	assert.NotEqual(t, a.GUID(), d.GUID())
}

func TestLinkOrderIndependence(t *testing.T) {
	owner := NewTarget(mustTag(t, "=A1+K1"), KindDevice)
	p1 := NewPin(owner, nil, "1")
	p2 := NewPin(owner, nil, "2")

	ab := NewLink(p1, p2, "w1")
	ba := NewLink(p2, p1, "w1")
	assert.Equal(t, ab.GUID(), ba.GUID())
	assert.Equal(t, LinkKey(p1, p2), LinkKey(p2, p1))

	// The pair alone is the identity; the name is descriptive.
	named := NewLink(p1, p2, "w2")
	assert.Equal(t, ab.GUID(), named.GUID())
}

func TestLinkDefaultsToVirtualName(t *testing.T) {
	owner := NewTarget(mustTag(t, "=A1"), KindDevice)
	l := NewLink(NewPin(owner, nil, "1"), NewPin(owner, nil, "2"), "")
	assert.Equal(t, VirtualLinkName, l.Name())
}

func TestLinkOther(t *testing.T) {
	owner := NewTarget(mustTag(t, "=A1"), KindDevice)
	p1 := NewPin(owner, nil, "1")
	p2 := NewPin(owner, nil, "2")
	p3 := NewPin(owner, nil, "3")

	l := NewLink(p1, p2, "")
	assert.Same(t, p2, l.Other(p1))
	assert.Same(t, p1, l.Other(p2))
	assert.Nil(t, l.Other(p3))
}

func TestConnectionIdentity(t *testing.T) {
	a := NewTarget(mustTag(t, "=A1+K1"), KindDevice)
	b := NewTarget(mustTag(t, "=A1+K2"), KindDevice)
	cable := NewTarget(mustTag(t, "-W1"), KindCable)

	ab := NewConnection(a, b, cable)
	ba := NewConnection(b, a, cable)
	assert.Equal(t, ab.GUID(), ba.GUID())
	assert.Equal(t, ConnectionKey(a, b, cable), ConnectionKey(b, a, cable))

	// The cable is part of the identity.
	virtual := NewConnection(a, b, nil)
	assert.NotEqual(t, ab.GUID(), virtual.GUID())
	assert.True(t, virtual.Virtual())
	assert.False(t, ab.Virtual())
}

func TestSelfConnection(t *testing.T) {
	a := NewTarget(mustTag(t, "=A1+K1"), KindDevice)
	b := NewTarget(mustTag(t, "=A1+K2"), KindDevice)

	assert.True(t, NewConnection(a, a, nil).SelfConnection())
	assert.False(t, NewConnection(a, b, nil).SelfConnection())
}

func TestConnectionMixedEndpoints(t *testing.T) {
	target := NewTarget(mustTag(t, "=A1+K1"), KindDevice)
	other := NewTarget(mustTag(t, "=A1+K2"), KindDevice)
	pin := NewPin(other, nil, "4")

	c := NewConnection(target, pin, nil)
	x, y := c.Endpoints()
	got := map[string]bool{x.EndpointLabel(): true, y.EndpointLabel(): true}
	assert.True(t, got["=A1+K1"])
	assert.True(t, got["=A1+K2:4"])
}

func TestConnectionLinks(t *testing.T) {
	a := NewTarget(mustTag(t, "=A1+K1"), KindDevice)
	b := NewTarget(mustTag(t, "=A1+K2"), KindDevice)
	conn := NewConnection(a, b, nil)

	p1 := NewPin(a, nil, "1")
	p2 := NewPin(b, nil, "2")
	l := NewLink(p1, p2, "")

	conn.AddLink(l)
	conn.AddLink(l)
	assert.Len(t, conn.Links(), 1)

	p3 := NewPin(b, nil, "3")
	conn.MergeLinks([]*Link{l, NewLink(p1, p3, "")})
	assert.Len(t, conn.Links(), 2)

	// Links enumerate in stable GUID order.
	links := conn.Links()
	assert.True(t, links[0].GUID().String() < links[1].GUID().String())
}
