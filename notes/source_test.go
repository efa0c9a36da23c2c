package notes

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/poiesic/notevec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedRow struct {
	category string
	text     any
}

// seedNotes creates a SQLite notes table holding rows in insertion order.
func seedNotes(t *testing.T, rows []seedRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE NOTEEVENTS (ROW_ID INTEGER PRIMARY KEY, CATEGORY TEXT, TEXT TEXT)`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	stmt, err := tx.Prepare(`INSERT INTO NOTEEVENTS (CATEGORY, TEXT) VALUES (?, ?)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := stmt.Exec(r.category, r.text)
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Commit())
	return path
}

func repeat(n int, category string, text any) []seedRow {
	rows := make([]seedRow, n)
	for i := range rows {
		rows[i] = seedRow{category: category, text: text}
	}
	return rows
}

func TestSource_Load(t *testing.T) {
	ctx := context.Background()

	var rows []seedRow
	rows = append(rows, repeat(2, "Social Work", "Met with family.")...)
	rows = append(rows, repeat(3000, "Physician", "Pt stable.")...)
	rows = append(rows, repeat(4, "Nursing", "Vitals q4h.")...)
	rows = append(rows, seedRow{category: "Social Work", text: nil})
	path := seedNotes(t, rows)

	src, err := Open(ctx, "sqlite3", path)
	require.NoError(t, err)
	defer src.Close()

	notes, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, notes, PhysicianLimit+3)

	for i, n := range notes[:PhysicianLimit] {
		assert.Equal(t, core.CategoryPhysician, n.Category, "note %d", i)
		require.NoError(t, core.ValidateNoteRecord(&n))
	}
	assert.Equal(t, int64(3), notes[0].ID, "physician notes come first in source order")

	social := notes[PhysicianLimit:]
	assert.Equal(t, []int64{1, 2, 3007}, []int64{social[0].ID, social[1].ID, social[2].ID})
	for _, n := range social {
		assert.Equal(t, core.CategorySocialWork, n.Category)
	}
	assert.Equal(t, "", social[2].Text, "NULL text loads as empty")
}

func TestSource_WithQueries(t *testing.T) {
	ctx := context.Background()
	path := seedNotes(t, append(repeat(5, "Physician", "a"), repeat(5, "Social Work", "b")...))

	src, err := Open(ctx, "sqlite3", path, WithQueries(
		CategoryQuery{Category: core.CategorySocialWork, Limit: 2},
		CategoryQuery{Category: core.CategoryPhysician, Limit: 1},
	))
	require.NoError(t, err)
	defer src.Close()

	notes, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, core.CategorySocialWork, notes[0].Category)
	assert.Equal(t, core.CategoryPhysician, notes[2].Category)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, "nosuchdriver", "x")
		assert.ErrorIs(t, err, core.ErrConnection)
	})

	t.Run("unreachable database", func(t *testing.T) {
		_, err := Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "missing", "dir", "notes.db"))
		assert.ErrorIs(t, err, core.ErrConnection)
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, err := Open(ctx, "sqlite3", ":memory:", WithTable("NOTES; DROP TABLE x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := Open(ctx, "sqlite3", ":memory:", WithQueries(CategoryQuery{Category: core.Category(42)}))
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
	})
}

func TestSource_LoadQueryError(t *testing.T) {
	ctx := context.Background()
	path := seedNotes(t, nil)

	src, err := Open(ctx, "sqlite3", path, WithTable("MISSING_NOTES"))
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, core.ErrQuery)
}

func TestSource_LoadInvalidRow(t *testing.T) {
	ctx := context.Background()
	path := seedNotes(t, nil)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO NOTEEVENTS (ROW_ID, CATEGORY, TEXT) VALUES (-3, 'Physician', 'Pt stable.')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := Open(ctx, "sqlite3", path)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, core.ErrInvalidNote)
}

func TestSource_CloseTwice(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, "sqlite3", seedNotes(t, nil))
	require.NoError(t, err)

	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}
