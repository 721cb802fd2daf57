// Package search finds targets and connections in a session by tag text
// and CEL filter expressions. Indexes are point-in-time snapshots: the
// searcher copies what it needs when asked and never holds session locks
// during query evaluation.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/uuid"

	"github.com/indugraph/indugraph"
)

// Query is one search request. Text partial-matches the entity's tag
// (case-insensitive); Filter is an optional CEL boolean expression over the
// indexed document. Both empty matches everything indexed.
type Query struct {
	Text   string
	Filter string
}

// targetDoc is the CEL evaluation scope for one indexed target. Attributes
// map each field name to every value the entity carries under that name.
type targetDoc struct {
	guid       uuid.UUID
	tag        string
	kind       string
	attributes map[string][]string
	pages      []int64
}

// connectionDoc is the CEL evaluation scope for one indexed connection.
type connectionDoc struct {
	guid       uuid.UUID
	tag        string
	src        string
	dest       string
	virtual    bool
	links      int64
	attributes map[string][]string
	pages      []int64
}

// Searcher answers queries against snapshots of a session. Build one,
// index, query; re-index after further ingestion to see new facts.
type Searcher struct {
	session *indugraph.Session

	targetEnv     *cel.Env
	connectionEnv *cel.Env

	targets     map[uuid.UUID]targetDoc
	connections map[uuid.UUID]connectionDoc
}

// NewSearcher creates a searcher over session and indexes its current
// contents.
func NewSearcher(session *indugraph.Session) (*Searcher, error) {
	if session == nil {
		return nil, indugraph.ErrDependencyFailed
	}

	targetEnv, err := cel.NewEnv(
		cel.Variable("tag", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.ListType(cel.StringType))),
		cel.Variable("pages", cel.ListType(cel.IntType)),
	)
	if err != nil {
		return nil, fmt.Errorf("building target filter env: %w", err)
	}

	connectionEnv, err := cel.NewEnv(
		cel.Variable("tag", cel.StringType),
		cel.Variable("src", cel.StringType),
		cel.Variable("dest", cel.StringType),
		cel.Variable("virtual", cel.BoolType),
		cel.Variable("links", cel.IntType),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.ListType(cel.StringType))),
		cel.Variable("pages", cel.ListType(cel.IntType)),
	)
	if err != nil {
		return nil, fmt.Errorf("building connection filter env: %w", err)
	}

	s := &Searcher{
		session:       session,
		targetEnv:     targetEnv,
		connectionEnv: connectionEnv,
	}
	s.IndexTargets()
	s.IndexConnections()
	return s, nil
}

// IndexTargets snapshots the session's targets, replacing any previous
// target index.
func (s *Searcher) IndexTargets() {
	docs := make(map[uuid.UUID]targetDoc)
	for _, t := range s.session.Targets() {
		docs[t.GUID()] = targetDoc{
			guid:       t.GUID(),
			tag:        t.Tag().Canonical(),
			kind:       t.Kind().String(),
			attributes: t.Attributes().Searchable(),
			pages:      s.pagesOf(t.GUID()),
		}
	}
	s.targets = docs
}

// IndexConnections snapshots the session's connections, replacing any
// previous connection index.
func (s *Searcher) IndexConnections() {
	docs := make(map[uuid.UUID]connectionDoc)
	for _, c := range s.session.Connections() {
		a, b := c.Endpoints()
		doc := connectionDoc{
			guid:       c.GUID(),
			src:        a.EndpointLabel(),
			dest:       b.EndpointLabel(),
			virtual:    c.Virtual(),
			links:      int64(len(c.Links())),
			attributes: c.Attributes().Searchable(),
			pages:      s.pagesOf(c.GUID()),
		}
		if cable := c.Cable(); cable != nil {
			doc.tag = cable.Tag().Canonical()
		}
		docs[c.GUID()] = doc
	}
	s.connections = docs
}

func (s *Searcher) pagesOf(guid uuid.UUID) []int64 {
	entries := s.session.PagesOf(guid)
	pages := make([]int64, 0, len(entries))
	for _, e := range entries {
		pages = append(pages, int64(e.Page))
	}
	return pages
}

// SearchTargets returns the GUIDs of indexed targets matching q, sorted.
func (s *Searcher) SearchTargets(q Query) ([]uuid.UUID, error) {
	prg, err := s.compile(s.targetEnv, q.Filter)
	if err != nil {
		return nil, err
	}

	var out []uuid.UUID
	for guid, doc := range s.targets {
		if !partialMatch(doc.tag, q.Text) {
			continue
		}
		ok, err := s.eval(prg, map[string]any{
			"tag":        doc.tag,
			"kind":       doc.kind,
			"attributes": doc.attributes,
			"pages":      doc.pages,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, guid)
		}
	}
	sortGUIDs(out)
	return out, nil
}

// SearchConnections returns the GUIDs of indexed connections matching q,
// sorted. Text matches the cable tag; virtual connections have an empty
// cable tag and only match an empty Text.
func (s *Searcher) SearchConnections(q Query) ([]uuid.UUID, error) {
	prg, err := s.compile(s.connectionEnv, q.Filter)
	if err != nil {
		return nil, err
	}

	var out []uuid.UUID
	for guid, doc := range s.connections {
		if !partialMatch(doc.tag, q.Text) {
			continue
		}
		ok, err := s.eval(prg, map[string]any{
			"tag":        doc.tag,
			"src":        doc.src,
			"dest":       doc.dest,
			"virtual":    doc.virtual,
			"links":      doc.links,
			"attributes": doc.attributes,
			"pages":      doc.pages,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, guid)
		}
	}
	sortGUIDs(out)
	return out, nil
}

// compile returns nil when the filter is empty, meaning match-all.
func (s *Searcher) compile(env *cel.Env, filter string) (cel.Program, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	ast, iss := env.Compile(filter)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", filter, iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter %q: want bool result, got %s", filter, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building filter program: %w", err)
	}
	return prg, nil
}

func (s *Searcher) eval(prg cel.Program, scope map[string]any) (bool, error) {
	if prg == nil {
		return true, nil
	}
	out, _, err := prg.Eval(scope)
	if err != nil {
		return false, fmt.Errorf("evaluating filter: %w", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("filter produced %T, want bool", out.Value())
	}
	return ok, nil
}

func partialMatch(text, q string) bool {
	if strings.TrimSpace(q) == "" {
		return true
	}
	return strings.Contains(normalize(text), normalize(q))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortGUIDs(guids []uuid.UUID) {
	sort.Slice(guids, func(i, j int) bool {
		return guids[i].String() < guids[j].String()
	})
}
