package indugraph

import (
	"fmt"

	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/graph"
)

// Merge unions another session's graph into this one. Plugins build their
// facts into private sub-sessions; the orchestrator merges each completed
// sub-session into the main one.
//
// Entity GUIDs are content-derived, so the same entity discovered in both
// sessions lands on one instance here, with attributes, links and page
// associations unioned. Both sessions must share the same separator grammar.
func (s *Session) Merge(other *Session) error {
	const op = "Session.Merge"

	if other == nil || other == s {
		return nil
	}
	if !sameGrammar(s.cfg.Levels(), other.cfg.Levels()) {
		return &Error{Op: op, Kind: KindConfiguration,
			Err: fmt.Errorf("sessions use different separator grammars")}
	}

	// Tags: canonical strings reparse cleanly under the shared grammar.
	for _, t := range other.Tags() {
		if _, err := s.resolver.Resolve(t.Canonical()); err != nil {
			return newDependencyError(op, fmt.Errorf("reimport tag %q: %w", t.Canonical(), err))
		}
	}

	// Standalone attributes, so the canonical attribute store stays complete.
	s.mu.Lock()
	for _, a := range other.Attributes() {
		if _, ok := s.attributes[a.Key()]; !ok {
			s.attributes[a.Key()] = a
			s.byGUID[a.GUID()] = a
		}
	}
	s.mu.Unlock()

	for _, t := range other.Targets() {
		if _, err := s.adoptTarget(t); err != nil {
			return err
		}
	}

	// Pins are enumerated in cache-key order, which is not guaranteed to be
	// parent-first; CreatePin resolves the whole chain each time, so order
	// does not matter.
	for _, p := range other.Pins() {
		if _, err := s.adoptPin(p); err != nil {
			return err
		}
	}

	for _, l := range other.Links() {
		if _, err := s.adoptLink(l); err != nil {
			return err
		}
	}

	for _, c := range other.Connections() {
		if err := s.adoptConnection(c); err != nil {
			return err
		}
	}

	s.pages.Merge(other.pages)
	return nil
}

// sameGrammar compares two grammars level by level, order included.
func sameGrammar(a, b []aspects.Level) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// adoptTarget re-creates a foreign target in this session's registries.
func (s *Session) adoptTarget(t *graph.Target) (*graph.Target, error) {
	tagged, err := s.resolver.Resolve(t.Tag().Canonical())
	if err != nil {
		return nil, newDependencyError("Session.Merge", err)
	}
	return s.getOrCreateTarget(tagged, t.Kind(), t.Attributes().List(), nil), nil
}

// adoptPin re-creates a foreign pin (and its chain prefix) under the merged
// owner target.
func (s *Session) adoptPin(p *graph.Pin) (*graph.Pin, error) {
	owner, err := s.adoptTarget(p.Owner())
	if err != nil {
		return nil, err
	}
	return s.CreatePin(owner, p.Chain(), p.Attributes().List(), nil)
}

// adoptLink re-creates a foreign link between the merged pins.
func (s *Session) adoptLink(l *graph.Link) (*graph.Link, error) {
	a, b := l.Pins()
	ma, err := s.adoptPin(a)
	if err != nil {
		return nil, err
	}
	mb, err := s.adoptPin(b)
	if err != nil {
		return nil, err
	}
	return s.CreateLink(ma, mb, l.Name(), l.Attributes().List(), nil)
}

// adoptEndpoint maps a foreign endpoint (target or pin) to its merged
// counterpart.
func (s *Session) adoptEndpoint(e graph.Endpoint) (graph.Endpoint, error) {
	switch v := e.(type) {
	case *graph.Target:
		return s.adoptTarget(v)
	case *graph.Pin:
		return s.adoptPin(v)
	}
	return nil, newValidationError("Session.Merge", fmt.Errorf("unknown endpoint type %T", e))
}

// adoptConnection re-creates a foreign connection with merged endpoints,
// cable and links.
func (s *Session) adoptConnection(c *graph.Connection) error {
	a, b := c.Endpoints()
	ma, err := s.adoptEndpoint(a)
	if err != nil {
		return err
	}
	mb, err := s.adoptEndpoint(b)
	if err != nil {
		return err
	}

	var cable *graph.Target
	if c.Cable() != nil {
		if cable, err = s.adoptTarget(c.Cable()); err != nil {
			return err
		}
	}

	links := make([]*graph.Link, 0, len(c.Links()))
	for _, l := range c.Links() {
		ml, err := s.adoptLink(l)
		if err != nil {
			return err
		}
		links = append(links, ml)
	}

	_, err = s.CreateConnection(ma, mb, cable, links, c.Attributes().List(), nil)
	return err
}
