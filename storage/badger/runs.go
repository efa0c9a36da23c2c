package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) *RunRepository {
	return &RunRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *RunRepository) Close() error {
	return nil
}

// SaveRun persists a run record and its start-time index entry.
func (r *RunRepository) SaveRun(ctx context.Context, run *core.Run) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if run.Id == "" {
		return fmt.Errorf("%w: run id is empty", storage.ErrInvalidQuery)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if run.StartedAt.IsZero() {
			run.StartedAt = now
		}
		run.UpdatedAt = now
		if err := tx.Set(makeRunKey(run.Id), storage.MarshalRun(run)); err != nil {
			return err
		}
		if err := tx.Set(makeRunDateKey(run.StartedAt, run.Id), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadRun retrieves a run by ID.
func (r *RunRepository) LoadRun(ctx context.Context, id string) (*core.Run, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var run *core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		run, err = r.readRun(tx, id)
		return err
	}, false)
	return run, err
}

func (r *RunRepository) readRun(tx *badger.Txn, id string) (*core.Run, error) {
	item, err := tx.Get(makeRunKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, id)
		}
		return nil, err
	}
	var run *core.Run
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalRun(val)
		return unmarshalErr
	})
	return run, err
}

// RecentRuns retrieves up to limit runs, most recently started first.
func (r *RunRepository) RecentRuns(ctx context.Context, limit int) ([]*core.Run, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var results []*core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent runs first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(runDatePrefix + ":")
		// Seek past the last possible index key
		startKey := append(bytes.Clone(prefix), 0xff)

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().KeyCopy(nil)
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			run, err := r.readRun(tx, runIDFromDateKey(key))
			if err != nil {
				return err
			}
			results = append(results, run)
		}
		return nil
	}, false)
	return results, err
}
