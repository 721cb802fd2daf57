package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indugraph/indugraph"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/graph"
)

func buildSession(t *testing.T) *indugraph.Session {
	t.Helper()
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	color, err := s.CreateAttribute(attr.KindSimple, "color", "brown")
	require.NoError(t, err)

	page := &indugraph.PageRef{Page: 12, Source: "cabinet.pdf"}
	_, err = s.CreateLinkedConnection("-W7", "=A1+K1:1", "=A1+K2:2", []attr.Attribute{color}, page)
	require.NoError(t, err)
	return s
}

func TestBuildSnapshot(t *testing.T) {
	s := buildSession(t)
	snap := Build(s)

	assert.Equal(t, s.ID(), snap.SessionID)
	assert.False(t, snap.ExportedAt.IsZero())
	assert.Equal(t, aspects.Default().Levels(), snap.Grammar)

	// cable plus the two endpoints
	require.Len(t, snap.Targets, 3)
	require.Len(t, snap.Pins, 2)
	require.Len(t, snap.Links, 1)
	require.Len(t, snap.Connections, 1)

	conn := snap.Connections[0]
	assert.False(t, conn.Virtual)
	require.NotNil(t, conn.Cable)
	require.Len(t, conn.Links, 1)
	assert.Equal(t, snap.Links[0].GUID, conn.Links[0])
	assert.Equal(t, []PageRecord{{Page: 12, Source: "cabinet.pdf"}}, conn.Pages)

	// The wiring row's attributes ride on the link, not the connection.
	assert.Empty(t, conn.Attributes)
	require.Len(t, snap.Links[0].Attributes, 1)
	assert.Equal(t, AttributeRecord{Name: "color", Kind: "simple", Value: "brown"}, snap.Links[0].Attributes[0])

	kinds := map[string]int{}
	for _, tr := range snap.Targets {
		kinds[tr.Kind]++
	}
	assert.Equal(t, map[string]int{"device": 2, "cable": 1}, kinds)

	for _, p := range snap.Pins {
		assert.Len(t, p.Chain, 1)
	}
}

func TestSnapshotKeepsSameNameAttributes(t *testing.T) {
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	red, err := s.CreateAttribute(attr.KindSimple, "color", "red")
	require.NoError(t, err)
	blue, err := s.CreateAttribute(attr.KindSimple, "color", "blue")
	require.NoError(t, err)

	_, err = s.CreateTarget("=A1+K1", graph.KindDevice, []attr.Attribute{red, blue}, nil)
	require.NoError(t, err)

	snap := Build(s)
	require.Len(t, snap.Targets, 1)

	var values []any
	for _, rec := range snap.Targets[0].Attributes {
		assert.Equal(t, "color", rec.Name)
		values = append(values, rec.Value)
	}
	assert.ElementsMatch(t, []any{"red", "blue"}, values)
}

func TestBuildSnapshotDeterministic(t *testing.T) {
	a := Build(buildSession(t))
	b := Build(buildSession(t))

	// Fresh sessions with the same content produce the same records.
	b.SessionID = a.SessionID
	b.ExportedAt = a.ExportedAt
	assert.Equal(t, a, b)
}

func TestJSONExporter(t *testing.T) {
	s := buildSession(t)
	snap := Build(s)

	var buf bytes.Buffer
	exp := NewJSONExporter(&buf, WithIndent())
	require.NoError(t, exp.Export(context.Background(), snap))

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap.SessionID, decoded.SessionID)
	assert.Len(t, decoded.Targets, len(snap.Targets))
	assert.Len(t, decoded.Connections, len(snap.Connections))
}

func TestJSONExporterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	exp := NewJSONExporter(&buf)
	err := exp.Export(ctx, Build(buildSession(t)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestSnapshotEmptySession(t *testing.T) {
	s, err := indugraph.NewSession(aspects.Default())
	require.NoError(t, err)

	snap := Build(s)
	assert.Empty(t, snap.Targets)
	assert.Empty(t, snap.Connections)

	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter(&buf).Export(context.Background(), snap))
	assert.Contains(t, buf.String(), `"session_id"`)
}
