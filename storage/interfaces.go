package storage

import (
	"context"

	"github.com/poiesic/notevec/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository. It does not close
	// the shared backend.
	Close() error
}

// VectorRepository stores the sentence vectors exported from a trained model.
type VectorRepository interface {
	Repository

	// PutTagVectors stores vectors keyed by tag, replacing existing entries.
	PutTagVectors(ctx context.Context, vectors ...*core.TagVector) error

	// GetTagVector retrieves the vector of one tag.
	// Returns ErrNotFound if the tag doesn't exist.
	GetTagVector(ctx context.Context, tag string) (*core.TagVector, error)

	// GetNoteVectors retrieves every vector belonging to a note, ordered by sentence index.
	GetNoteVectors(ctx context.Context, noteID int64) ([]*core.TagVector, error)

	// CountTagVectors returns the number of stored vectors.
	CountTagVectors(ctx context.Context) (int, error)

	// DeleteAllTagVectors removes every stored vector.
	DeleteAllTagVectors(ctx context.Context) error

	// FindSimilar scans all vectors and returns tags whose cosine similarity
	// to vector is >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]core.SimilarityMatch, error)
}

// RunRepository persists pipeline run records.
type RunRepository interface {
	Repository

	// SaveRun inserts or replaces a run record.
	// Sets UpdatedAt automatically and StartedAt if not already set.
	SaveRun(ctx context.Context, run *core.Run) error

	// LoadRun retrieves a run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	LoadRun(ctx context.Context, id string) (*core.Run, error)

	// RecentRuns retrieves up to limit runs, most recently started first.
	RecentRuns(ctx context.Context, limit int) ([]*core.Run, error)
}
