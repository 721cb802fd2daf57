// Package plugin defines the contract between document plugins and the
// object factory. A plugin knows how to walk one family of source documents
// (a vendor's PDF table layout, a CSV wiring list) and emits already-decoded
// structural facts into the factory; it never parses document-specific
// syntax on the factory's behalf, and the factory never reads documents.
package plugin

import (
	"context"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/graph"
	"github.com/indugraph/indugraph/tag"
)

// Factory is the creation surface a plugin sees while processing a
// document. It is the plugin-facing subset of *indugraph.Session: plugins
// create and record, exporters enumerate.
type Factory interface {
	// CreateAttribute resolves the canonical attribute for the identity
	// triple.
	CreateAttribute(kind attr.Kind, name string, value any) (attr.Attribute, error)

	// CreateTag resolves a raw identifier into the canonical shared tag.
	CreateTag(raw string, page *indugraph.PageRef) (*tag.Tag, error)

	// CreateTarget resolves the canonical target for a raw tag and kind.
	CreateTarget(raw string, kind graph.TargetKind, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Target, error)

	// CreatePin resolves a pin chain under a target, level by level.
	CreatePin(target *graph.Target, chain []string, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Pin, error)

	// CreateLink resolves the canonical link for an unordered pin pair.
	CreateLink(a, b *graph.Pin, name string, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Link, error)

	// CreateConnection resolves the canonical connection for an unordered
	// endpoint pair and cable identity.
	CreateConnection(a, b graph.Endpoint, cable *graph.Target, links []*graph.Link, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Connection, error)

	// CreateConnectionByTags ingests a connection row given as raw tag
	// strings.
	CreateConnectionByTags(cableRaw, rawFrom, rawTo string, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Connection, error)

	// CreateLinkedConnection ingests one wiring row of "tag:pin" endpoint
	// strings through an optional cable.
	CreateLinkedConnection(cableRaw, pinTagFrom, pinTagTo string, attrs []attr.Attribute, page *indugraph.PageRef) (*graph.Connection, error)

	// RecordPage associates an already-created entity with a page.
	RecordPage(entity graph.Endpoint, page *indugraph.PageRef)
}

// Compile-time check that the session satisfies the plugin contract.
var _ Factory = (*indugraph.Session)(nil)

// Plugin walks source documents and emits structural facts into a Factory.
type Plugin interface {
	// Name returns the unique identifier for the plugin.
	Name() string

	// Supports reports whether this plugin can process the given source
	// (typically decided from the file extension or a cheap sniff).
	Supports(source string) bool

	// Process walks the source and emits its facts into the factory.
	// Unparseable individual facts should be skipped, not returned as
	// errors; an error aborts this source only, never the whole run.
	Process(ctx context.Context, source string, factory Factory) error
}

// State describes where a source's ingestion is in its lifecycle.
type State string

const (
	// StateIdle means processing has not started.
	StateIdle State = "idle"

	// StateRunning means a plugin is processing the source.
	StateRunning State = "running"

	// StateCompleted means the source finished successfully.
	StateCompleted State = "completed"

	// StateFailed means the source aborted with an error.
	StateFailed State = "failed"

	// StateStopped means the run was cancelled before the source started.
	StateStopped State = "stopped"
)

// EventType discriminates runner events.
type EventType string

const (
	// EventStarted is emitted when a plugin begins a source.
	EventStarted EventType = "started"

	// EventCompleted is emitted when a source finishes and its facts have
	// been merged into the main session.
	EventCompleted EventType = "completed"

	// EventFailed is emitted when a source aborts with an error.
	EventFailed EventType = "failed"

	// EventSkipped is emitted when no registered plugin supports a source.
	EventSkipped EventType = "skipped"
)

// Event describes one lifecycle notification from a Runner.
type Event struct {
	// Type discriminates the notification.
	Type EventType

	// Plugin is the emitting plugin's name. Empty for EventSkipped.
	Plugin string

	// Source is the document being processed.
	Source string

	// SessionID identifies the sub-session the source was built into.
	SessionID uuid.UUID

	// State is the source's lifecycle state after this event.
	State State

	// Err carries the failure for EventFailed.
	Err error
}

// Handler receives runner events. Handlers run synchronously on the
// ingestion goroutine and must return quickly.
type Handler func(Event)
