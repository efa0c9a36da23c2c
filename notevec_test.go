package notevec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []core.NoteRecord

func (s staticSource) Load(_ context.Context) ([]core.NoteRecord, error) { return s, nil }
func (s staticSource) Close() error                                      { return nil }

func opener(records ...core.NoteRecord) pipeline.SourceOpener {
	return func(_ context.Context) (pipeline.NoteSource, error) {
		return staticSource(records), nil
	}
}

func smallConfig() doc2vec.Config {
	cfg := doc2vec.DefaultConfig()
	cfg.MinCount = 1
	cfg.VectorSize = 8
	cfg.Workers = 1
	cfg.Sample = 0
	return cfg
}

func TestOpenWorkspace(t *testing.T) {
	t.Run("create new workspace", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		ws, err := OpenWorkspace(dir)
		require.NoError(t, err)
		require.NotNil(t, ws)
		defer ws.Close()

		assert.NotNil(t, ws.RunRepository())
		assert.NotNil(t, ws.VectorRepository())
		assert.NotNil(t, ws.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(file, []byte("test"), 0644))

		ws, err := OpenWorkspace(file)
		assert.Error(t, err)
		assert.Nil(t, ws)
	})
}

func TestWorkspace_Close(t *testing.T) {
	ws, err := OpenWorkspace(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, ws.Close())
}

func TestWorkspace_Pipeline(t *testing.T) {
	ws, err := OpenWorkspace("", InMemory())
	require.NoError(t, err)
	defer ws.Close()
	ctx := context.Background()

	p, err := ws.NewPipeline(
		opener(
			core.NoteRecord{ID: 1, Category: core.CategoryPhysician, Text: "Pt denied pain. Pt resting."},
			core.NoteRecord{ID: 2, Category: core.CategorySocialWork, Text: "Met with family."},
		),
		pipeline.WithArtifactPath(filepath.Join(t.TempDir(), "d2v-200")),
		pipeline.WithTrainerConfig(smallConfig()),
		pipeline.WithEpochs(2),
	)
	require.NoError(t, err)

	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Exported)

	runs, err := ws.RunRepository().RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.Run.Id, runs[0].Id)

	vec, err := ws.VectorRepository().GetTagVector(ctx, "1-1")
	require.NoError(t, err)
	assert.Len(t, vec.Vector, 8)

	searcher, err := ws.NewSearcher(report.Model)
	require.NoError(t, err)
	matches, err := searcher.FindSimilar(ctx, "family", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	n, err := ws.ExportModel(ctx, report.Model)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
