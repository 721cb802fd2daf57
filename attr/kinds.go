package attr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// simpleAttr is a plain string fact.
type simpleAttr struct {
	name  string
	value string
}

// Simple creates a plain string attribute such as {"color", "red"}.
func Simple(name, value string) Attribute {
	return &simpleAttr{name: name, value: value}
}

func (a simpleAttr) Name() string  { return a.name }
func (a simpleAttr) Kind() Kind    { return KindSimple }
func (a simpleAttr) Value() any    { return a.value }
func (a simpleAttr) Key() string   { return key(KindSimple, a.name, a.value) }
func (a simpleAttr) GUID() uuid.UUID {
	return guidFor(a.Key())
}
func (a simpleAttr) String() string { return a.name + ": " + a.value }
func (a simpleAttr) Searchable() map[string]string {
	return map[string]string{normalize(a.name): normalize(a.value)}
}

// tracksAttr lists the routing tracks a wire passes through.
type tracksAttr struct {
	name   string
	tracks []string
}

// RoutingTracks creates a routing-tracks attribute. Track order is not part
// of the identity: the same tracks in a different order are the same fact.
func RoutingTracks(name string, tracks []string) Attribute {
	cp := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t = strings.TrimSpace(t); t != "" {
			cp = append(cp, t)
		}
	}
	return &tracksAttr{name: name, tracks: cp}
}

func (a tracksAttr) Name() string { return a.name }
func (a tracksAttr) Kind() Kind   { return KindRoutingTracks }
func (a tracksAttr) Value() any {
	cp := make([]string, len(a.tracks))
	copy(cp, a.tracks)
	return cp
}

func (a tracksAttr) canonical() string {
	sorted := make([]string, len(a.tracks))
	copy(sorted, a.tracks)
	sort.Strings(sorted)
	return strings.Join(sorted, ";")
}

func (a tracksAttr) Key() string     { return key(KindRoutingTracks, a.name, a.canonical()) }
func (a tracksAttr) GUID() uuid.UUID { return guidFor(a.Key()) }
func (a tracksAttr) String() string  { return fmt.Sprintf("route %s: %v", a.name, a.tracks) }
func (a tracksAttr) Searchable() map[string]string {
	return map[string]string{normalize(a.name): normalize(strings.Join(a.tracks, ";"))}
}

// plcAttr describes a PLC address with free-form metadata.
type plcAttr struct {
	name string
	meta map[string]string
}

// PLCAddress creates a PLC address attribute. The metadata map is copied.
func PLCAddress(name string, meta map[string]string) Attribute {
	cp := make(map[string]string, len(meta))
	for k, v := range meta {
		cp[k] = v
	}
	return &plcAttr{name: name, meta: cp}
}

func (a plcAttr) Name() string { return a.name }
func (a plcAttr) Kind() Kind   { return KindPLCAddress }
func (a plcAttr) Value() any {
	cp := make(map[string]string, len(a.meta))
	for k, v := range a.meta {
		cp[k] = v
	}
	return cp
}

func (a plcAttr) canonical() string {
	keys := make([]string, 0, len(a.meta))
	for k := range a.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + a.meta[k]
	}
	return strings.Join(pairs, ";")
}

func (a plcAttr) Key() string     { return key(KindPLCAddress, a.name, a.canonical()) }
func (a plcAttr) GUID() uuid.UUID { return guidFor(a.Key()) }
func (a plcAttr) String() string  { return fmt.Sprintf("plc %s: %s", a.name, a.canonical()) }
func (a plcAttr) Searchable() map[string]string {
	out := make(map[string]string, len(a.meta))
	for k, v := range a.meta {
		out[normalize(k)] = normalize(v)
	}
	return out
}

// Position locates a fact on a source page: page number plus bounding box
// (x0, y0, x1, y1) in page coordinates.
type Position struct {
	Page int
	BBox [4]float64
}

// locationAttr records where on a page the owning fact was printed.
type locationAttr struct {
	name string
	pos  Position
}

// Location creates a page-location attribute.
func Location(name string, pos Position) Attribute {
	return &locationAttr{name: name, pos: pos}
}

func (a locationAttr) Name() string { return a.name }
func (a locationAttr) Kind() Kind   { return KindLocation }
func (a locationAttr) Value() any   { return a.pos }

func (a locationAttr) canonical() string {
	return fmt.Sprintf("%d:%.4f,%.4f,%.4f,%.4f",
		a.pos.Page, a.pos.BBox[0], a.pos.BBox[1], a.pos.BBox[2], a.pos.BBox[3])
}

func (a locationAttr) Key() string     { return key(KindLocation, a.name, a.canonical()) }
func (a locationAttr) GUID() uuid.UUID { return guidFor(a.Key()) }
func (a locationAttr) String() string  { return fmt.Sprintf("pos %s: %s", a.name, a.canonical()) }
func (a locationAttr) Searchable() map[string]string {
	return map[string]string{normalize(a.name): a.canonical()}
}

// normalize lowercases and trims a string for search indexing, the same
// normalization applied to identity-bearing text everywhere in the module.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
