package notes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/poiesic/notevec/core"
)

const (
	// DefaultTable is the notes table queried by default.
	DefaultTable = "NOTEEVENTS"

	// PhysicianLimit caps the number of Physician notes loaded.
	PhysicianLimit = 2670
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CategoryQuery selects the notes of one category. Limit 0 means no limit.
type CategoryQuery struct {
	Category core.Category
	Limit    int
}

// DefaultQueries returns the queries issued by Load, in order: the first
// PhysicianLimit Physician notes, then every Social Work note.
func DefaultQueries() []CategoryQuery {
	return []CategoryQuery{
		{Category: core.CategoryPhysician, Limit: PhysicianLimit},
		{Category: core.CategorySocialWork},
	}
}

// Source reads clinical notes from a relational store.
type Source struct {
	db        *sql.DB
	table     string
	queries   []CategoryQuery
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Source.
type Option func(*Source) error

// WithTable sets the notes table. The name must be a plain or
// schema-qualified SQL identifier.
func WithTable(table string) Option {
	return func(s *Source) error {
		if !identifier.MatchString(table) {
			return fmt.Errorf("invalid table name %q", table)
		}
		s.table = table
		return nil
	}
}

// WithQueries replaces the default category queries.
func WithQueries(queries ...CategoryQuery) Option {
	return func(s *Source) error {
		for _, q := range queries {
			if err := core.ValidateCategory(q.Category); err != nil {
				return err
			}
			if q.Limit < 0 {
				return fmt.Errorf("negative limit %d for %s", q.Limit, q.Category)
			}
		}
		s.queries = queries
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// Open connects to the notes store through a database/sql driver
// ("mysql" or "sqlite3") and verifies the connection.
// Connection failures wrap core.ErrConnection.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Source, error) {
	s := &Source{
		table:   DefaultTable,
		queries: DefaultQueries(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}

	s.db = db
	s.logger = s.logger.With("component", "notes", "driver", driver)
	return s, nil
}

// Load runs every category query in order and concatenates the results.
// Query failures wrap core.ErrQuery. Nothing is retried.
func (s *Source) Load(ctx context.Context) ([]core.NoteRecord, error) {
	var notes []core.NoteRecord
	for _, q := range s.queries {
		batch, err := s.loadCategory(ctx, q)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("loaded notes", "category", q.Category.String(), "count", len(batch))
		notes = append(notes, batch...)
	}
	return notes, nil
}

func (s *Source) loadCategory(ctx context.Context, q CategoryQuery) ([]core.NoteRecord, error) {
	query, args := s.selectStatement(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s notes: %w", core.ErrQuery, q.Category, err)
	}
	defer rows.Close()

	var notes []core.NoteRecord
	for rows.Next() {
		var (
			id       int64
			category string
			text     sql.NullString
		)
		if err := rows.Scan(&id, &category, &text); err != nil {
			return nil, fmt.Errorf("%w: scanning %s notes: %w", core.ErrQuery, q.Category, err)
		}
		parsed, err := core.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", core.ErrQuery, id, err)
		}
		note := core.NoteRecord{ID: id, Category: parsed, Text: text.String}
		if err := core.ValidateNoteRecord(&note); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQuery, err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s notes: %w", core.ErrQuery, q.Category, err)
	}
	return notes, nil
}

func (s *Source) selectStatement(q CategoryQuery) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ROW_ID, CATEGORY, TEXT FROM ")
	b.WriteString(s.table)
	b.WriteString(" WHERE CATEGORY = ?")
	args := []any{q.Category.String()}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

// Close releases the connection. It is safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
