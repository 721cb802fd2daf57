package indugraph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/graph"
	"github.com/indugraph/indugraph/pagemap"
	"github.com/indugraph/indugraph/tag"
	"go.opentelemetry.io/otel/trace"
)

// PageRef carries the optional page context accompanying a creation call.
// A nil *PageRef means "no page context": the entity is created or merged
// but no page association is recorded.
type PageRef struct {
	// Page is the 1-based page number within Source.
	Page int

	// Source names the document the page belongs to. When empty, the
	// session's configured default source is used.
	Source string

	// Footer holds the page footer, used to complete partial tags.
	Footer tag.Footer
}

// Session is the canonical object factory and page-association index for one
// document processing run. All creation operations are get-or-create:
// semantically identical entities resolve to one shared instance no matter
// how many times or on how many pages they are re-derived, and incidental
// data (attributes, links) merges into that instance without duplication.
//
// Registries are owned by the session, never process-global, so concurrent
// sessions coexist. A Session is safe for concurrent use.
type Session struct {
	id       uuid.UUID
	created  time.Time
	cfg      *aspects.Config
	logger   *slog.Logger
	resolver *tag.Resolver
	tel      *telemetry
	source   string

	mu          sync.RWMutex
	targets     map[string]*graph.Target     // TargetKey -> target
	pins        map[string]*graph.Pin        // chain node key -> pin
	links       map[string]*graph.Link       // LinkKey -> link
	connections map[string]*graph.Connection // ConnectionKey -> connection
	attributes  map[string]attr.Attribute    // attr.Key -> attribute
	byGUID      map[uuid.UUID]any            // every entity, for GUID lookups

	pages *pagemap.Index
}

// NewSession creates an empty session for the given grammar.
func NewSession(cfg *aspects.Config, opts ...Option) (*Session, error) {
	if cfg == nil || cfg.Len() == 0 {
		return nil, &Error{Op: "NewSession", Kind: KindConfiguration, Err: aspects.ErrNoLevels}
	}

	sc := &sessionConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(sc)
	}

	return &Session{
		id:          uuid.New(),
		created:     time.Now(),
		cfg:         cfg,
		logger:      sc.logger,
		resolver:    tag.NewResolver(cfg, tag.WithLogger(sc.logger)),
		tel:         newTelemetry(sc),
		source:      sc.source,
		targets:     make(map[string]*graph.Target),
		pins:        make(map[string]*graph.Pin),
		links:       make(map[string]*graph.Link),
		connections: make(map[string]*graph.Connection),
		attributes:  make(map[string]attr.Attribute),
		byGUID:      make(map[uuid.UUID]any),
		pages:       pagemap.NewIndex(),
	}, nil
}

// ID returns the session's instance identifier. Unlike entity GUIDs it is
// random, not content-derived.
func (s *Session) ID() uuid.UUID { return s.id }

// Config returns the separator grammar the session parses against.
func (s *Session) Config() *aspects.Config { return s.cfg }

// Resolver returns the session's tag resolver.
func (s *Session) Resolver() *tag.Resolver { return s.resolver }

// StartPage opens a tracing span covering the ingestion of one page. The
// returned span must be ended by the caller. A no-op when no tracer is
// configured.
func (s *Session) StartPage(ctx context.Context, page PageRef) (context.Context, trace.Span) {
	return s.tel.startPage(ctx, page)
}

// entry converts a page reference into an index entry, applying the
// session's default source.
func (s *Session) entry(page *PageRef) pagemap.Entry {
	if page == nil {
		return pagemap.Entry{}
	}
	src := page.Source
	if src == "" {
		src = s.source
	}
	return pagemap.Entry{Page: page.Page, Source: src}
}

// CreateAttribute builds (or resolves) the canonical attribute instance for
// the (kind, name, value) identity. Repeat creations return the same
// instance.
func (s *Session) CreateAttribute(kind attr.Kind, name string, value any) (attr.Attribute, error) {
	const op = "Session.CreateAttribute"

	a, err := attr.New(kind, name, value)
	if err != nil {
		return nil, newValidationError(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.attributes[a.Key()]; ok {
		return existing, nil
	}
	s.attributes[a.Key()] = a
	s.byGUID[a.GUID()] = a
	return a, nil
}

// CreateTag resolves a raw identifier into the canonical shared Tag,
// completing it from the page footer when one is present. Parse failures are
// recoverable: skip the fact and continue.
func (s *Session) CreateTag(raw string, page *PageRef) (*tag.Tag, error) {
	const op = "Session.CreateTag"

	var (
		t   *tag.Tag
		err error
	)
	if page != nil && !page.Footer.IsZero() {
		t, err = s.resolver.ResolveWithFooter(raw, page.Footer)
	} else {
		t, err = s.resolver.Resolve(raw)
	}
	if err != nil {
		s.tel.recordParseFailure(context.Background())
		return nil, newParseError(op, fmt.Errorf("%w: %w", ErrUnparsableTag, err)).
			WithContext(map[string]any{"raw": raw})
	}
	return t, nil
}

// CreateTarget resolves raw into a tag and returns the canonical target for
// the (tag, kind) identity, merging the given attributes into it. Raw
// strings still carrying a pin suffix are rejected: pins are created through
// CreatePin, never smuggled in through a target tag.
func (s *Session) CreateTarget(raw string, kind graph.TargetKind, attrs []attr.Attribute, page *PageRef) (*graph.Target, error) {
	const op = "Session.CreateTarget"

	if _, pin := s.resolver.SplitPin(raw); pin != "" {
		s.logger.Warn("target tag has pins", "raw", raw)
		return nil, newValidationError(op, fmt.Errorf("%w: %q", ErrPinSuffix, raw))
	}
	if err := kind.Validate(); err != nil {
		return nil, newValidationError(op, err)
	}

	t, err := s.CreateTag(raw, page)
	if err != nil {
		return nil, newDependencyError(op, fmt.Errorf("%w: %w", ErrDependencyFailed, err)).
			WithContext(map[string]any{"raw": raw})
	}
	return s.getOrCreateTarget(t, kind, attrs, page), nil
}

// getOrCreateTarget is the registry core for targets: one shared instance
// per (tag, kind), attributes unioned on every repeat derivation.
func (s *Session) getOrCreateTarget(t *tag.Tag, kind graph.TargetKind, attrs []attr.Attribute, page *PageRef) *graph.Target {
	key := graph.TargetKey(t, kind)

	s.mu.Lock()
	target, ok := s.targets[key]
	if ok {
		target.MergeAttributes(attrs)
	} else {
		target = graph.NewTarget(t, kind, attrs...)
		s.targets[key] = target
		s.byGUID[target.GUID()] = target
	}
	s.mu.Unlock()

	if ok {
		s.tel.recordMerged(context.Background(), "target")
	} else {
		s.tel.recordCreated(context.Background(), "target")
	}
	s.pages.Record(target.GUID(), s.entry(page))
	return target
}

// pinKey keys one chain level under its parent scope. Root levels are
// scoped by the owning target's GUID, deeper levels by the parent pin's.
func pinKey(scope uuid.UUID, token string) string {
	return scope.String() + "|" + token
}

// CreatePin resolves a pin chain level by level under target and returns
// the terminal node. Every intermediate node is cached and reachable as a
// first-class pin. Attributes and the page association apply to the terminal
// node only.
//
// An empty chain or an empty chain token is a contract violation; a nil
// target is a propagated dependency failure.
func (s *Session) CreatePin(target *graph.Target, chain []string, attrs []attr.Attribute, page *PageRef) (*graph.Pin, error) {
	const op = "Session.CreatePin"

	if target == nil {
		return nil, newDependencyError(op, ErrDependencyFailed)
	}
	if len(chain) == 0 {
		return nil, newValidationError(op, ErrEmptyPinChain)
	}
	for _, token := range chain {
		if strings.TrimSpace(token) == "" {
			return nil, newValidationError(op, fmt.Errorf("empty token in pin chain %v", chain))
		}
	}

	s.mu.Lock()
	var (
		node    *graph.Pin
		scope   = target.GUID()
		created bool
	)
	for _, token := range chain {
		key := pinKey(scope, token)
		next, ok := s.pins[key]
		if !ok {
			next = graph.NewPin(target, node, token)
			s.pins[key] = next
			s.byGUID[next.GUID()] = next
			created = true
		}
		node = next
		scope = node.GUID()
	}
	node.MergeAttributes(attrs)
	s.mu.Unlock()

	if created {
		s.tel.recordCreated(context.Background(), "pin")
	} else {
		s.tel.recordMerged(context.Background(), "pin")
	}
	s.pages.Record(node.GUID(), s.entry(page))
	return node, nil
}

// CreateLink returns the canonical link for the unordered pin pair, merging
// attributes on repeat derivations. Argument order never matters. The name
// (usually the owning cable tag) is kept from the first derivation.
func (s *Session) CreateLink(a, b *graph.Pin, name string, attrs []attr.Attribute, page *PageRef) (*graph.Link, error) {
	const op = "Session.CreateLink"

	if a == nil || b == nil {
		return nil, newDependencyError(op, fmt.Errorf("%w: link requires two pins", ErrDependencyFailed))
	}

	key := graph.LinkKey(a, b)

	s.mu.Lock()
	link, ok := s.links[key]
	if ok {
		link.MergeAttributes(attrs)
	} else {
		link = graph.NewLink(a, b, name, attrs...)
		s.links[key] = link
		s.byGUID[link.GUID()] = link
	}
	s.mu.Unlock()

	if ok {
		s.tel.recordMerged(context.Background(), "link")
	} else {
		s.tel.recordCreated(context.Background(), "link")
	}
	s.pages.Record(link.GUID(), s.entry(page))
	return link, nil
}

// CreateConnection returns the canonical connection for the unordered
// endpoint pair and cable identity. A nil cable denotes a virtual
// connection and is an identity of its own; self-connections are valid.
// Repeat derivations union the supplied links and attributes into the
// existing connection.
func (s *Session) CreateConnection(a, b graph.Endpoint, cable *graph.Target, links []*graph.Link, attrs []attr.Attribute, page *PageRef) (*graph.Connection, error) {
	const op = "Session.CreateConnection"

	if a == nil || b == nil {
		return nil, newDependencyError(op, fmt.Errorf("%w: connection requires two endpoints", ErrDependencyFailed))
	}

	key := graph.ConnectionKey(a, b, cable)

	s.mu.Lock()
	conn, ok := s.connections[key]
	if !ok {
		conn = graph.NewConnection(a, b, cable)
		s.connections[key] = conn
		s.byGUID[conn.GUID()] = conn
	}
	conn.MergeLinks(links)
	conn.MergeAttributes(attrs)
	s.mu.Unlock()

	if ok {
		s.tel.recordMerged(context.Background(), "connection")
	} else {
		s.tel.recordCreated(context.Background(), "connection")
	}
	s.pages.Record(conn.GUID(), s.entry(page))
	return conn, nil
}

// CreateConnectionByTags is the raw-string convenience for document
// plugins: endpoints are created as device targets from rawFrom/rawTo, and
// cableRaw (when non-empty) becomes a cable target bound to the connection.
// Attributes go to the cable target, matching how cables carry their facts
// in schematic tables.
func (s *Session) CreateConnectionByTags(cableRaw, rawFrom, rawTo string, attrs []attr.Attribute, page *PageRef) (*graph.Connection, error) {
	const op = "Session.CreateConnectionByTags"

	var cable *graph.Target
	if cableRaw != "" {
		var err error
		cable, err = s.CreateTarget(cableRaw, graph.KindCable, attrs, page)
		if err != nil {
			return nil, newDependencyError(op, fmt.Errorf("%w: cable %q", ErrDependencyFailed, cableRaw))
		}
	}

	from, err := s.CreateTarget(rawFrom, graph.KindDevice, nil, page)
	if err != nil {
		return nil, newDependencyError(op, fmt.Errorf("%w: endpoint %q", ErrDependencyFailed, rawFrom))
	}
	to, err := s.CreateTarget(rawTo, graph.KindDevice, nil, page)
	if err != nil {
		return nil, newDependencyError(op, fmt.Errorf("%w: endpoint %q", ErrDependencyFailed, rawTo))
	}

	return s.CreateConnection(from, to, cable, nil, nil, page)
}

// CreateLinkedConnection ingests one wiring row: two "tag:pin[:subpin...]"
// strings connected through cableRaw (empty for a virtual connection). It
// creates the endpoint targets, their pin chains, the link between the
// terminal pins, and the connection aggregating that link. Attributes go to
// the link, which is the entity a wiring row describes.
func (s *Session) CreateLinkedConnection(cableRaw, pinTagFrom, pinTagTo string, attrs []attr.Attribute, page *PageRef) (*graph.Connection, error) {
	const op = "Session.CreateLinkedConnection"

	rawFrom, pinFrom := s.resolver.SplitPin(pinTagFrom)
	rawTo, pinTo := s.resolver.SplitPin(pinTagTo)
	if pinFrom == "" || pinTo == "" {
		s.logger.Warn("linked connection without pins", "from", pinTagFrom, "to", pinTagTo)
		return nil, newValidationError(op, fmt.Errorf("linked connection requires pins on both ends"))
	}
	if rawFrom == "" || rawTo == "" {
		s.logger.Warn("linked connection without targets", "from", pinTagFrom, "to", pinTagTo)
		return nil, newValidationError(op, fmt.Errorf("linked connection requires targets on both ends"))
	}

	conn, err := s.CreateConnectionByTags(cableRaw, rawFrom, rawTo, nil, page)
	if err != nil {
		return nil, err
	}

	// Get-or-create is idempotent, so re-resolving the endpoints here
	// returns the same canonical instances the connection holds.
	from, err := s.CreateTarget(rawFrom, graph.KindDevice, nil, page)
	if err != nil {
		return nil, newDependencyError(op, err)
	}
	to, err := s.CreateTarget(rawTo, graph.KindDevice, nil, page)
	if err != nil {
		return nil, newDependencyError(op, err)
	}

	linkName := cableRaw
	if linkName == "" {
		linkName = graph.VirtualLinkName
	}

	srcPin, err := s.CreatePin(from, s.splitChain(pinFrom), nil, page)
	if err != nil {
		return nil, err
	}
	dstPin, err := s.CreatePin(to, s.splitChain(pinTo), nil, page)
	if err != nil {
		return nil, err
	}

	link, err := s.CreateLink(srcPin, dstPin, linkName, attrs, page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	conn.AddLink(link)
	s.mu.Unlock()
	return conn, nil
}

// splitChain turns a pin suffix (":1:2") into chain tokens (["1", "2"]).
func (s *Session) splitChain(pin string) []string {
	term := s.cfg.Terminal()
	var chain []string
	for _, token := range strings.Split(pin, term) {
		if token != "" {
			chain = append(chain, token)
		}
	}
	return chain
}

// RecordPage associates an already-created entity with a page. A zero page
// or nil entity is a guarded no-op.
func (s *Session) RecordPage(entity graph.Endpoint, page *PageRef) {
	if entity == nil || page == nil {
		return
	}
	s.pages.Record(entity.GUID(), s.entry(page))
}

// ObjectsOnPage returns the GUIDs of every entity observed on the page.
func (s *Session) ObjectsOnPage(e pagemap.Entry) []uuid.UUID {
	return s.pages.ObjectsOn(e)
}

// PagesOf returns every page the entity identified by guid appears on.
func (s *Session) PagesOf(guid uuid.UUID) []pagemap.Entry {
	return s.pages.PagesOf(guid)
}

// PagesOfObject returns every page the entity appears on, accepting a live
// reference to any entity type.
func (s *Session) PagesOfObject(entity interface{ GUID() uuid.UUID }) []pagemap.Entry {
	if entity == nil {
		return nil
	}
	return s.pages.PagesOf(entity.GUID())
}

// PageIndex exposes the underlying bidirectional index.
func (s *Session) PageIndex() *pagemap.Index { return s.pages }

// ObjectByGUID resolves a GUID to the live entity (target, pin, link,
// connection or attribute).
func (s *Session) ObjectByGUID(guid uuid.UUID) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.byGUID[guid]
	if !ok {
		return nil, newNotFoundError("Session.ObjectByGUID", fmt.Errorf("%w: %s", ErrNotFound, guid))
	}
	return obj, nil
}

// TargetByGUID resolves a GUID to a target.
func (s *Session) TargetByGUID(guid uuid.UUID) (*graph.Target, error) {
	obj, err := s.ObjectByGUID(guid)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*graph.Target)
	if !ok {
		return nil, newNotFoundError("Session.TargetByGUID", fmt.Errorf("%w: %s is not a target", ErrNotFound, guid))
	}
	return t, nil
}

// Targets enumerates every canonical target, ordered by identity key.
func (s *Session) Targets() []*graph.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.targets)
}

// Pins enumerates every cached pin node, intermediates included, ordered by
// cache key.
func (s *Session) Pins() []*graph.Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.pins)
}

// Links enumerates every canonical link, ordered by identity key.
func (s *Session) Links() []*graph.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.links)
}

// Connections enumerates every canonical connection, ordered by identity
// key.
func (s *Session) Connections() []*graph.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.connections)
}

// Attributes enumerates every canonical attribute, ordered by identity key.
func (s *Session) Attributes() []attr.Attribute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.attributes)
}

// Tags enumerates every resolved tag, ordered by canonical string.
func (s *Session) Tags() []*tag.Tag {
	tags := s.resolver.Tags()
	sort.Slice(tags, func(i, j int) bool { return tags[i].Canonical() < tags[j].Canonical() })
	return tags
}

// sortedValues returns map values ordered by key, for stable enumeration.
func sortedValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Stats summarizes registry sizes.
type Stats struct {
	Targets          int
	Pins             int
	Links            int
	Connections      int
	Tags             int
	Attributes       int
	PageAssociations int
}

// Stats returns the current registry sizes.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Targets:          len(s.targets),
		Pins:             len(s.pins),
		Links:            len(s.links),
		Connections:      len(s.connections),
		Tags:             len(s.resolver.Tags()),
		Attributes:       len(s.attributes),
		PageAssociations: s.pages.Len(),
	}
}

// String summarizes the session for logs.
func (s *Session) String() string {
	st := s.Stats()
	return fmt.Sprintf("Session(%s: targets=%d pins=%d links=%d connections=%d tags=%d attributes=%d)",
		s.id, st.Targets, st.Pins, st.Links, st.Connections, st.Tags, st.Attributes)
}
