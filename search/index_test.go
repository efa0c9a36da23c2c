package search

import (
	"context"
	"testing"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *doc2vec.Model {
	t.Helper()
	cfg := doc2vec.DefaultConfig()
	cfg.MinCount = 1
	cfg.VectorSize = 8
	cfg.Window = 2
	cfg.Workers = 1
	cfg.Sample = 0
	cfg.Epochs = 5

	corpus := core.Corpus{
		{Tokens: []string{"pt", "denied", "pain"}, Tag: "1-0"},
		{Tokens: []string{"pt", "resting", "comfortably"}, Tag: "1-1"},
		{Tokens: []string{"met", "with", "family"}, Tag: "2-0"},
		{Tokens: []string{"family", "support", "discussed"}, Tag: "2-1"},
	}
	m, err := doc2vec.New(cfg)
	require.NoError(t, err)
	require.NoError(t, m.BuildVocab(context.Background(), corpus))
	require.NoError(t, m.Train(context.Background(), corpus))
	return m
}

func TestIndex_Nearest(t *testing.T) {
	idx := NewIndex(3)
	require.NoError(t, idx.Add("1-0", []float32{1, 0, 0}))
	require.NoError(t, idx.Add("2-0", []float32{0.8, 0.2, 0}))
	require.NoError(t, idx.Add("3-0", []float32{0, 0, 1}))
	assert.Equal(t, 3, idx.Len())

	matches, err := idx.Nearest([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1-0", matches[0].Tag)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "2-0", matches[1].Tag)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestIndex_Add_Replace(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Add("1-0", []float32{1, 0}))
	require.NoError(t, idx.Add("1-0", []float32{0, 1}))
	assert.Equal(t, 1, idx.Len())

	matches, err := idx.Nearest([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}

func TestIndex_Add_ReplaceAmongMany(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Add("1-0", []float32{1, 0}))
	require.NoError(t, idx.Add("2-0", []float32{0, 1}))
	require.NoError(t, idx.Add("1-0", []float32{0, 1}))
	assert.Equal(t, 2, idx.Len())

	matches, err := idx.Similar("2-0", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1-0", matches[0].Tag)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}

func TestIndex_Add_ReplaceRepeatedly(t *testing.T) {
	idx := NewIndex(2)
	for i := range 5 {
		require.NoError(t, idx.Add("7-0", []float32{float32(i + 1), 1}))
	}
	assert.Equal(t, 1, idx.Len())

	matches, err := idx.Nearest([]float32{5, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "7-0", matches[0].Tag)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx := NewIndex(3)
	assert.ErrorIs(t, idx.Add("1-0", []float32{1}), ErrDimensionMismatch)

	_, err := idx.Nearest([]float32{1, 2}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(2)
	matches, err := idx.Nearest([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndex_Similar(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Add("1-0", []float32{1, 0}))
	require.NoError(t, idx.Add("1-1", []float32{0.9, 0.1}))
	require.NoError(t, idx.Add("2-0", []float32{0, 1}))

	matches, err := idx.Similar("1-0", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1-1", matches[0].Tag)
	for _, m := range matches {
		assert.NotEqual(t, "1-0", m.Tag, "the query tag is excluded")
	}

	_, err = idx.Similar("9-9", 1)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestFromModel(t *testing.T) {
	m := testModel(t)
	idx, err := FromModel(m)
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	vec, ok := m.DocVector("2-0")
	require.True(t, ok)
	matches, err := idx.Nearest(vec, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2-0", matches[0].Tag)
}

func TestFromModel_Errors(t *testing.T) {
	_, err := FromModel(nil)
	assert.ErrorIs(t, err, ErrModelRequired)

	m := testModel(t)
	m.Compact(doc2vec.CompactOptions{KeepInference: true})
	_, err = FromModel(m)
	assert.ErrorIs(t, err, ErrNoDocVectors)
}
