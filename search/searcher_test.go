package search

import (
	"context"
	"testing"

	"github.com/poiesic/notevec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMonitor struct {
	query   string
	tokens  []string
	vector  []float32
	matches []core.SimilarityMatch
}

func (r *recordingMonitor) Start(query string)                    { r.query = query }
func (r *recordingMonitor) AfterTokenize(tokens []string)         { r.tokens = tokens }
func (r *recordingMonitor) AfterInference(vector []float32)       { r.vector = vector }
func (r *recordingMonitor) Finish(matches []core.SimilarityMatch) { r.matches = matches }

func TestNewSearcher_RequiresModel(t *testing.T) {
	_, err := NewSearcher(nil)
	assert.ErrorIs(t, err, ErrModelRequired)
}

func TestSearcher_FindSimilar(t *testing.T) {
	s, err := NewSearcher(testModel(t), WithLogger(nil))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	matches, err := s.FindSimilarWithMonitor(context.Background(), "Pt denied PAIN!", 3, monitor)
	require.NoError(t, err)

	assert.Equal(t, "Pt denied PAIN!", monitor.query)
	assert.Equal(t, []string{"pt", "denied", "pain"}, monitor.tokens)
	assert.Len(t, monitor.vector, 8)
	assert.Equal(t, matches, monitor.matches)

	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSearcher_WithIndex(t *testing.T) {
	idx := NewIndex(8)
	require.NoError(t, idx.Add("5-0", []float32{1, 1, 1, 1, 1, 1, 1, 1}))

	s, err := NewSearcher(testModel(t), WithIndex(idx))
	require.NoError(t, err)
	assert.Same(t, idx, s.Index())
}

func TestSearcher_Cancelled(t *testing.T) {
	s, err := NewSearcher(testModel(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.FindSimilar(ctx, "pain", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
