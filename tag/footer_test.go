package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indugraph/indugraph/aspects"
)

func TestFooterIsZero(t *testing.T) {
	assert.True(t, Footer{}.IsZero())
	assert.True(t, Footer{Project: "P"}.IsZero())
	assert.False(t, Footer{Tags: []string{"=F1"}}.IsZero())
}

func TestResolveWithFooter(t *testing.T) {
	r := NewResolver(aspects.Default())
	footer := Footer{Tags: []string{"=F1", "+L1"}}

	tests := []struct {
		name      string
		raw       string
		canonical string
	}{
		// A tag missing every footer level gets the full prefix.
		{name: "full completion", raw: "-P1", canonical: "=F1+L1-P1"},

		// A tag that already has a level keeps its own value and closes the
		// window there.
		{name: "own functional wins", raw: "=X9-P1", canonical: "=X9-P1"},
		{name: "own location closes window", raw: "+L9-P1", canonical: "=F1+L9-P1"},

		// A complete tag is returned untouched.
		{name: "complete tag", raw: "=A1+B1-P1", canonical: "=A1+B1-P1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveWithFooter(tt.raw, footer)
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, got.Canonical())
		})
	}
}

func TestResolveWithFooterSharesInstance(t *testing.T) {
	r := NewResolver(aspects.Default())
	footer := Footer{Tags: []string{"=F1"}}

	completed, err := r.ResolveWithFooter("+L1", footer)
	require.NoError(t, err)
	direct, err := r.Resolve("=F1+L1")
	require.NoError(t, err)

	assert.Same(t, direct, completed)
}

func TestResolveWithFooterSkipsDocumentAspect(t *testing.T) {
	r := NewResolver(aspects.Default())
	footer := Footer{Tags: []string{"&DOC1", "=F1"}}

	got, err := r.ResolveWithFooter("+L1", footer)
	require.NoError(t, err)
	assert.Equal(t, "=F1+L1", got.Canonical())
}

func TestResolveWithFooterUnparsableRaw(t *testing.T) {
	r := NewResolver(aspects.Default())
	footer := Footer{Tags: []string{"=F1"}}

	_, err := r.ResolveWithFooter("garbage", footer)
	assert.ErrorIs(t, err, ErrNoSeparator)
}

func TestFooterFirstValuePerSeparatorWins(t *testing.T) {
	r := NewResolver(aspects.Default())
	footer := Footer{Tags: []string{"=F1", "=F2+L1"}}

	got, err := r.ResolveWithFooter("-P1", footer)
	require.NoError(t, err)
	assert.Equal(t, "=F1+L1-P1", got.Canonical())
}
