package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indugraph/indugraph"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/graph"
)

func seededSession(t *testing.T) *indugraph.Session {
	t.Helper()
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	color, err := s.CreateAttribute(attr.KindSimple, "color", "green")
	require.NoError(t, err)

	page := &indugraph.PageRef{Page: 7, Source: "plant.pdf"}
	_, err = s.CreateTarget("=A1+K1", graph.KindDevice, []attr.Attribute{color}, page)
	require.NoError(t, err)
	_, err = s.CreateTarget("=A1+X1", graph.KindStrip, nil, nil)
	require.NoError(t, err)
	_, err = s.CreateTarget("=B9+K1", graph.KindDevice, nil, nil)
	require.NoError(t, err)

	_, err = s.CreateLinkedConnection("-W1", "=A1+K1:1", "=A1+K2:4", nil, page)
	require.NoError(t, err)
	_, err = s.CreateLinkedConnection("", "=A1+K2:5", "=B9+K1:2", nil, nil)
	require.NoError(t, err)

	return s
}

func TestSearchTargetsByText(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	// =A1+K1, =A1+X1 and the =A1+K2 endpoint created by the wiring row
	got, err := sr.SearchTargets(Query{Text: "=a1"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = sr.SearchTargets(Query{Text: "+K2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = sr.SearchTargets(Query{Text: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchTargetsByFilter(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  Query
		expect int
	}{
		{"kind only", Query{Filter: `kind == "device"`}, 3},
		{"kind and text", Query{Text: "=A1", Filter: `kind == "device"`}, 2},
		{"attribute lookup", Query{Filter: `"color" in attributes && "green" in attributes["color"]`}, 1},
		{"page membership", Query{Filter: `7 in pages`}, 3},
		{"no match", Query{Filter: `kind == "cable" && tag.contains("=Z")`}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sr.SearchTargets(tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.expect)
		})
	}
}

func TestSearchTargetsSameNameAttributes(t *testing.T) {
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	red, err := s.CreateAttribute(attr.KindSimple, "color", "red")
	require.NoError(t, err)
	blue, err := s.CreateAttribute(attr.KindSimple, "color", "blue")
	require.NoError(t, err)
	_, err = s.CreateTarget("=A1+K1", graph.KindDevice, []attr.Attribute{red, blue}, nil)
	require.NoError(t, err)

	sr, err := NewSearcher(s)
	require.NoError(t, err)

	// Both facts are indexed, not just the last one per name.
	for _, filter := range []string{
		`"red" in attributes["color"]`,
		`"blue" in attributes["color"]`,
	} {
		got, err := sr.SearchTargets(Query{Filter: filter})
		require.NoError(t, err)
		assert.Len(t, got, 1, filter)
	}
}

func TestSearchTargetsBadFilter(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	_, err = sr.SearchTargets(Query{Filter: `kind ==`})
	assert.Error(t, err)

	_, err = sr.SearchTargets(Query{Filter: `tag`})
	assert.Error(t, err, "non-boolean filter must be rejected")
}

func TestSearchConnections(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	got, err := sr.SearchConnections(Query{Text: "-W1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = sr.SearchConnections(Query{Filter: `virtual`})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = sr.SearchConnections(Query{Filter: `src.contains("=B9") || dest.contains("=B9")`})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = sr.SearchConnections(Query{Filter: `links >= 1`})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearcherSnapshotSemantics(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	before, err := sr.SearchTargets(Query{})
	require.NoError(t, err)

	_, err = s.CreateTarget("=C1", graph.KindDevice, nil, nil)
	require.NoError(t, err)

	after, err := sr.SearchTargets(Query{})
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "results must not change until re-indexed")

	sr.IndexTargets()
	after, err = sr.SearchTargets(Query{})
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestSearchResultsSortedAndResolvable(t *testing.T) {
	s := seededSession(t)
	sr, err := NewSearcher(s)
	require.NoError(t, err)

	got, err := sr.SearchTargets(Query{})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	prev := ""
	for _, guid := range got {
		assert.Less(t, prev, guid.String())
		prev = guid.String()

		_, err := s.TargetByGUID(guid)
		assert.NoError(t, err)
	}
}

func TestNewSearcherRequiresSession(t *testing.T) {
	_, err := NewSearcher(nil)
	assert.Error(t, err)
}

func TestSearchEmptyIndex(t *testing.T) {
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	sr, err := NewSearcher(s)
	require.NoError(t, err)

	got, err := sr.SearchTargets(Query{Text: "=A"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.IsType(t, []uuid.UUID(nil), got)
}
