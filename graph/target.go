package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/tag"
)

// TargetKind discriminates what a tagged component is.
type TargetKind string

const (
	// KindDevice is an electrical device (motor, relay, controller).
	KindDevice TargetKind = "device"

	// KindStrip is a terminal strip or connector block.
	KindStrip TargetKind = "strip"

	// KindCable is a cable or wire bundle.
	KindCable TargetKind = "cable"

	// KindOther is the fallback for unclassified components.
	KindOther TargetKind = "other"
)

// Validate checks that the kind is one of the registered kinds.
func (k TargetKind) Validate() error {
	switch k {
	case KindDevice, KindStrip, KindCable, KindOther:
		return nil
	}
	return fmt.Errorf("graph: unknown target kind %q", string(k))
}

// String returns the kind's wire name.
func (k TargetKind) String() string { return string(k) }

// Target is a physical or logical component identified by a tag and a kind.
// The (tag, kind) pair is the identity; attributes are incidental data
// merged across repeat derivations.
type Target struct {
	tag   *tag.Tag
	kind  TargetKind
	guid  uuid.UUID
	attrs attr.Set
}

// NewTarget builds a target for the given tag and kind. The GUID is derived
// from the identity pair and is stable across sessions.
func NewTarget(t *tag.Tag, kind TargetKind, attrs ...attr.Attribute) *Target {
	return &Target{
		tag:   t,
		kind:  kind,
		guid:  deriveGUID(nsTarget, t.Canonical(), string(kind)),
		attrs: attr.NewSet(attrs...),
	}
}

// TargetKey returns the registry cache key for a (tag, kind) identity.
func TargetKey(t *tag.Tag, kind TargetKind) string {
	return t.Canonical() + "|" + string(kind)
}

// Key returns the registry cache key for this target's identity.
func (t *Target) Key() string { return TargetKey(t.tag, t.kind) }

// Tag returns the identifying tag.
func (t *Target) Tag() *tag.Tag { return t.tag }

// Kind returns the kind discriminator.
func (t *Target) Kind() TargetKind { return t.kind }

// GUID returns the stable identifier.
func (t *Target) GUID() uuid.UUID { return t.guid }

// Attributes gives access to the merged attribute set.
func (t *Target) Attributes() *attr.Set { return &t.attrs }

// MergeAttributes unions the given attributes into the target, idempotently.
func (t *Target) MergeAttributes(attrs []attr.Attribute) {
	t.attrs.AddAll(attrs)
}

// Name reconstructs the display tag in grammar priority order, so documents
// that state aspects in different orders render one consistent name.
func (t *Target) Name(cfg *aspects.Config) string {
	return tag.Reconstruct(t.tag, cfg)
}

// EndpointLabel implements Endpoint.
func (t *Target) EndpointLabel() string { return t.tag.Canonical() }

// String returns the canonical tag string.
func (t *Target) String() string { return t.tag.Canonical() }
