// Package export serializes a session's canonical objects for downstream
// consumers. A Snapshot is a stable, self-contained view taken at one
// moment; exporters write snapshots to sinks (JSON streams, Redis).
package export

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/indugraph/indugraph"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
)

// Exporter writes one snapshot to a sink.
type Exporter interface {
	Export(ctx context.Context, snap *Snapshot) error
}

// PageRecord is one page association on an exported object.
type PageRecord struct {
	Page   int    `json:"page"`
	Source string `json:"source,omitempty"`
}

// AttributeRecord is one exported fact. Every attribute is kept, including
// distinct facts sharing a name.
type AttributeRecord struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// TargetRecord is the exported form of a target.
type TargetRecord struct {
	GUID       uuid.UUID         `json:"guid"`
	Tag        string            `json:"tag"`
	Kind       string            `json:"kind"`
	Attributes []AttributeRecord `json:"attributes,omitempty"`
	Pages      []PageRecord      `json:"pages,omitempty"`
}

// PinRecord is the exported form of a pin. Chain is the full name path
// from the owning target down to this pin.
type PinRecord struct {
	GUID       uuid.UUID         `json:"guid"`
	Owner      uuid.UUID         `json:"owner"`
	Chain      []string          `json:"chain"`
	Attributes []AttributeRecord `json:"attributes,omitempty"`
}

// LinkRecord is the exported form of a link between two pins.
type LinkRecord struct {
	GUID       uuid.UUID         `json:"guid"`
	Name       string            `json:"name"`
	PinA       uuid.UUID         `json:"pin_a"`
	PinB       uuid.UUID         `json:"pin_b"`
	Attributes []AttributeRecord `json:"attributes,omitempty"`
}

// EndpointRecord identifies one side of an exported connection.
type EndpointRecord struct {
	GUID  uuid.UUID `json:"guid"`
	Label string    `json:"label"`
}

// ConnectionRecord is the exported form of a connection.
type ConnectionRecord struct {
	GUID       uuid.UUID         `json:"guid"`
	Src        EndpointRecord    `json:"src"`
	Dest       EndpointRecord    `json:"dest"`
	Cable      *uuid.UUID        `json:"cable,omitempty"`
	Virtual    bool              `json:"virtual"`
	Links      []uuid.UUID       `json:"links,omitempty"`
	Attributes []AttributeRecord `json:"attributes,omitempty"`
	Pages      []PageRecord      `json:"pages,omitempty"`
}

// Snapshot is a point-in-time view of a session's canonical objects.
type Snapshot struct {
	SessionID   uuid.UUID          `json:"session_id"`
	Source      string             `json:"source,omitempty"`
	ExportedAt  time.Time          `json:"exported_at"`
	Grammar     []aspects.Level    `json:"grammar"`
	Targets     []TargetRecord     `json:"targets"`
	Pins        []PinRecord        `json:"pins"`
	Links       []LinkRecord       `json:"links"`
	Connections []ConnectionRecord `json:"connections"`
}

// Build takes a snapshot of the session's current contents. Records follow
// the session's enumeration order, which is stable across runs.
func Build(s *indugraph.Session) *Snapshot {
	snap := &Snapshot{
		SessionID:  s.ID(),
		ExportedAt: time.Now().UTC(),
		Grammar:    s.Config().Levels(),
	}

	for _, t := range s.Targets() {
		snap.Targets = append(snap.Targets, TargetRecord{
			GUID:       t.GUID(),
			Tag:        t.Tag().Canonical(),
			Kind:       t.Kind().String(),
			Attributes: attrRecords(t.Attributes()),
			Pages:      pageRecords(s, t.GUID()),
		})
	}

	for _, p := range s.Pins() {
		snap.Pins = append(snap.Pins, PinRecord{
			GUID:       p.GUID(),
			Owner:      p.Owner().GUID(),
			Chain:      p.Chain(),
			Attributes: attrRecords(p.Attributes()),
		})
	}

	for _, l := range s.Links() {
		a, b := l.Pins()
		snap.Links = append(snap.Links, LinkRecord{
			GUID:       l.GUID(),
			Name:       l.Name(),
			PinA:       a.GUID(),
			PinB:       b.GUID(),
			Attributes: attrRecords(l.Attributes()),
		})
	}

	for _, c := range s.Connections() {
		a, b := c.Endpoints()
		rec := ConnectionRecord{
			GUID:       c.GUID(),
			Src:        EndpointRecord{GUID: a.GUID(), Label: a.EndpointLabel()},
			Dest:       EndpointRecord{GUID: b.GUID(), Label: b.EndpointLabel()},
			Virtual:    c.Virtual(),
			Attributes: attrRecords(c.Attributes()),
			Pages:      pageRecords(s, c.GUID()),
		}
		if cable := c.Cable(); cable != nil {
			guid := cable.GUID()
			rec.Cable = &guid
		}
		for _, l := range c.Links() {
			rec.Links = append(rec.Links, l.GUID())
		}
		snap.Connections = append(snap.Connections, rec)
	}

	return snap
}

// attrRecords keeps every fact in the set, ordered by identity key.
func attrRecords(set *attr.Set) []AttributeRecord {
	list := set.List()
	if len(list) == 0 {
		return nil
	}
	out := make([]AttributeRecord, 0, len(list))
	for _, a := range list {
		out = append(out, AttributeRecord{
			Name:  a.Name(),
			Kind:  a.Kind().String(),
			Value: a.Value(),
		})
	}
	return out
}

func pageRecords(s *indugraph.Session, guid uuid.UUID) []PageRecord {
	entries := s.PagesOf(guid)
	if len(entries) == 0 {
		return nil
	}
	out := make([]PageRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, PageRecord{Page: e.Page, Source: e.Source})
	}
	return out
}
