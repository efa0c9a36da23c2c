package pipeline

import (
	"context"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/storage"
)

const exportBatchSize = 1000

// ExportTagVectors replaces the stored tag vectors with the model's and
// returns how many were written.
func ExportTagVectors(ctx context.Context, vectors storage.VectorRepository, model *doc2vec.Model) (int, error) {
	if !model.HasDocVectors() {
		return 0, ErrNoTagVectors
	}
	if err := vectors.DeleteAllTagVectors(ctx); err != nil {
		return 0, err
	}

	exported := 0
	batch := make([]*core.TagVector, 0, exportBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := vectors.PutTagVectors(ctx, batch...); err != nil {
			return err
		}
		exported += len(batch)
		batch = batch[:0]
		return nil
	}

	for tag, vec := range model.DocVectors() {
		tv, err := core.NewTagVector(tag, vec)
		if err != nil {
			return exported, err
		}
		batch = append(batch, tv)
		if len(batch) == exportBatchSize {
			if err := flush(); err != nil {
				return exported, err
			}
		}
	}
	if err := flush(); err != nil {
		return exported, err
	}
	return exported, nil
}
