package pipeline

import (
	"context"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/notes"
)

// NoteSource yields the notes to train on. Close must be safe to call more
// than once.
type NoteSource interface {
	Load(ctx context.Context) ([]core.NoteRecord, error)
	Close() error
}

// SourceOpener opens a NoteSource. The pipeline calls it once per run and
// closes the source as soon as the notes are loaded.
type SourceOpener func(ctx context.Context) (NoteSource, error)

// SQLOpener opens a notes.Source on a database/sql driver.
func SQLOpener(driver, dsn string, opts ...notes.Option) SourceOpener {
	return func(ctx context.Context) (NoteSource, error) {
		return notes.Open(ctx, driver, dsn, opts...)
	}
}
