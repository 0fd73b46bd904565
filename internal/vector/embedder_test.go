package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)

	a, err := e.Embed(context.Background(), "Trail Runner TR-42-BLK black")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Trail Runner TR-42-BLK black")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashingEmbedder_Normalized(t *testing.T) {
	e := NewHashingEmbedder(64)

	vec, err := e.Embed(context.Background(), "wireless mouse ergonomic")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashingEmbedder_EmptyTextYieldsZeroVector(t *testing.T) {
	e := NewHashingEmbedder(16)

	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, 16)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashingEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewHashingEmbedder(128)

	a, err := e.Embed(context.Background(), "running shoe")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "coffee grinder")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewHashingEmbedder_DefaultsDimensions(t *testing.T) {
	e := NewHashingEmbedder(0)

	vec, err := e.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimensions)
}
