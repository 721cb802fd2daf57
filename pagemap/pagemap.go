// Package pagemap maintains the bidirectional index between document pages
// and the entities observed on them. The index stores GUIDs, not entity
// references, so it works uniformly for every entity type and survives
// session merges.
package pagemap

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Entry identifies one page of one source document. Entries are value types:
// two entries with equal fields are the same page.
type Entry struct {
	// Page is the 1-based page number. Entries with Page < 1 are ignored.
	Page int

	// Source names the document the page belongs to. Empty is valid for
	// single-document sessions.
	Source string
}

// IsZero reports whether the entry does not name a real page.
func (e Entry) IsZero() bool { return e.Page < 1 }

// Index is the bidirectional page/object mapping. Both directions are
// updated under one lock, so the invariant
//
//	p in PagesOf(o)  <=>  o in ObjectsOn(p)
//
// holds after every operation. The zero value is not usable; construct with
// NewIndex.
type Index struct {
	mu       sync.RWMutex
	byPage   map[Entry]map[uuid.UUID]struct{}
	byObject map[uuid.UUID]map[Entry]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byPage:   make(map[Entry]map[uuid.UUID]struct{}),
		byObject: make(map[uuid.UUID]map[Entry]struct{}),
	}
}

// Record associates an entity with a page in both directions. A zero entry
// or a nil GUID is a guarded no-op: callers pass optional page context
// without special-casing. Recording the same association twice is a no-op.
func (x *Index) Record(guid uuid.UUID, e Entry) {
	if e.IsZero() || guid == uuid.Nil {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	objs, ok := x.byPage[e]
	if !ok {
		objs = make(map[uuid.UUID]struct{})
		x.byPage[e] = objs
	}
	objs[guid] = struct{}{}

	pages, ok := x.byObject[guid]
	if !ok {
		pages = make(map[Entry]struct{})
		x.byObject[guid] = pages
	}
	pages[e] = struct{}{}
}

// ObjectsOn returns the GUIDs of every entity observed on the page, sorted
// for stable enumeration. Unknown pages yield an empty slice.
func (x *Index) ObjectsOn(e Entry) []uuid.UUID {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(x.byPage[e]))
	for guid := range x.byPage[e] {
		out = append(out, guid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// PagesOf returns every page the entity was observed on, sorted by source
// then page number. Unknown entities yield an empty slice.
func (x *Index) PagesOf(guid uuid.UUID) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Entry, 0, len(x.byObject[guid]))
	for e := range x.byObject[guid] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Page < out[j].Page
	})
	return out
}

// Contains reports whether the association is recorded.
func (x *Index) Contains(guid uuid.UUID, e Entry) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.byPage[e][guid]
	return ok
}

// Pages returns every page carrying at least one entity, sorted like
// PagesOf output.
func (x *Index) Pages() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Entry, 0, len(x.byPage))
	for e := range x.byPage {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Page < out[j].Page
	})
	return out
}

// Len returns the number of distinct page/object associations.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := 0
	for _, objs := range x.byPage {
		n += len(objs)
	}
	return n
}

// Merge unions another index into this one. The other index is read-locked
// for the duration; both invariant directions hold throughout.
func (x *Index) Merge(other *Index) {
	if other == nil || other == x {
		return
	}

	other.mu.RLock()
	type assoc struct {
		guid uuid.UUID
		e    Entry
	}
	pending := make([]assoc, 0, len(other.byObject))
	for guid, pages := range other.byObject {
		for e := range pages {
			pending = append(pending, assoc{guid: guid, e: e})
		}
	}
	other.mu.RUnlock()

	for _, a := range pending {
		x.Record(a.guid, a.e)
	}
}
