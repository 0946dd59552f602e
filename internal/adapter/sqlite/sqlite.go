// Package sqlite implements the weight repository on an embedded SQLite
// database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"weighttracker/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql  *sql.DB
	path string
}

var _ domain.WeightRepository = (*DB)(nil)

// Open opens (creating if needed) the database at path and runs migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	s, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writes.
	s.SetMaxOpenConns(1)

	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	d := &DB{sql: s, path: path}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS weight_entries (id INTEGER PRIMARY KEY AUTOINCREMENT, value REAL NOT NULL CHECK(value > 0), created_at TEXT NOT NULL);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate %s: %w", d.path, err)
		}
	}
	return nil
}

// AppendWeightEntry inserts a new weight entry.
func (d *DB) AppendWeightEntry(ctx context.Context, e domain.WeightEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO weight_entries(value, created_at) VALUES(?, ?);",
		e.Value, e.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListWeightEntries returns every entry in insertion order.
func (d *DB) ListWeightEntries(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, value, created_at FROM weight_entries ORDER BY id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WeightEntry
	for rows.Next() {
		var (
			id        int64
			e         domain.WeightEntry
			createdAt string
		)
		if err := rows.Scan(&id, &e.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrCorruptData, d.path, id, err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: bad timestamp %q", domain.ErrCorruptData, d.path, id, createdAt)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
