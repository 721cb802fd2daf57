// Package indugraph builds a deduplicated, cross-referenced object graph
// from page-by-page structural facts extracted out of industrial technical
// documents: hierarchical component tags, electrical pins, wiring links,
// connections and free-form attributes.
//
// # Core Concepts
//
// The module is organized around a small set of concepts:
//
//   - Session: the canonical object factory owning all registries for one
//     document processing run
//   - Tags: hierarchical identifiers parsed under a configurable separator
//     grammar (package aspects, package tag)
//   - Targets, Pins, Links, Connections: the graph entities (package graph)
//   - Page-Object Index: the bidirectional mapping between pages and the
//     entities observed on them (package pagemap)
//   - Plugins: document walkers that emit raw facts into a session
//     (package plugin)
//   - Exporters: consumers of the completed graph (package export)
//
// # Identity Resolution
//
// Every creation operation is get-or-create: two calls with an equal
// identity key return the same instance, and incidental data discovered on
// repeat derivations (attributes, member links) merges into that instance
// without duplication or loss. Identity keys are content-derived, so GUIDs
// are stable across sessions and runs over the same document.
//
// # Getting Started
//
//	cfg := aspects.Default()
//	session, err := indugraph.NewSession(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page := &indugraph.PageRef{Page: 3, Source: "plant.pdf"}
//	motor, err := session.CreateTarget("=A1+B2", graph.KindDevice, nil, page)
//	if err != nil {
//		// unparsable facts are skipped, not fatal
//	}
//	_ = motor
//
// Failures are recoverable signals: an unparsable tag or an unresolved
// dependency is reported to the caller and never aborts the session, and no
// partially constructed entity ever becomes visible in enumeration.
package indugraph
