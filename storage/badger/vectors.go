// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *VectorRepository) Close() error {
	return nil
}

// PutTagVectors stores vectors keyed by tag, replacing existing entries.
func (r *VectorRepository) PutTagVectors(ctx context.Context, vectors ...*core.TagVector) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, v := range vectors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, _, err := core.ParseTag(v.Tag); err != nil {
				return err
			}
			if err := wb.Set(makeTagVectorKey(v.Tag), storage.MarshalTagVector(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTagVector retrieves the vector of one tag.
func (r *VectorRepository) GetTagVector(ctx context.Context, tag string) (*core.TagVector, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var vector *core.TagVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTagVectorKey(tag))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: tag %s", storage.ErrNotFound, tag)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			vector, unmarshalErr = storage.UnmarshalTagVector(val)
			return unmarshalErr
		})
	}, false)
	return vector, err
}

// GetNoteVectors retrieves every vector of a note, ordered by sentence index.
func (r *VectorRepository) GetNoteVectors(ctx context.Context, noteID int64) ([]*core.TagVector, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var results []*core.TagVector
	err := r.scan(makeNoteVectorPrefix(noteID), func(v *core.TagVector) error {
		results = append(results, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(results, func(a, b *core.TagVector) int {
		return a.Sentence - b.Sentence
	})
	return results, nil
}

// CountTagVectors returns the number of stored vectors.
func (r *VectorRepository) CountTagVectors(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tagVectorPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteAllTagVectors removes every stored vector.
func (r *VectorRepository) DeleteAllTagVectors(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.DeletePrefix([]byte(tagVectorPrefix + ":"))
}

// FindSimilar scans every stored vector and ranks tags by cosine similarity.
func (r *VectorRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]core.SimilarityMatch, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var results []core.SimilarityMatch
	err := r.scan([]byte(tagVectorPrefix+":"), func(v *core.TagVector) error {
		if len(v.Vector) != len(vector) {
			return nil
		}
		similarity := cosineSimilarity(vector, v.Vector)
		if similarity >= minSimilarity {
			results = append(results, core.SimilarityMatch{Tag: v.Tag, Score: similarity})
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scan decodes every vector under prefix.
func (r *VectorRepository) scan(prefix []byte, fn func(*core.TagVector) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var vector *core.TagVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalTagVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(vector); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// cosineSimilarity calculates the cosine similarity of two equal-length vectors.
func cosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math32.Sqrt(na) * math32.Sqrt(nb))
}
