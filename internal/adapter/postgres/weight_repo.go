package postgres

import (
	"context"
	"fmt"

	"weighttracker/internal/domain"
)

var _ domain.WeightRepository = (*DB)(nil)

// AppendWeightEntry inserts a new weight event.
func (d *DB) AppendWeightEntry(ctx context.Context, e domain.WeightEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO weight_events(value, created_at) VALUES($1, $2);",
		e.Value, e.CreatedAt.UTC(),
	)
	return err
}

// ListWeightEntries returns every weight event in insertion order.
func (d *DB) ListWeightEntries(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, value, created_at FROM weight_events ORDER BY id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WeightEntry
	for rows.Next() {
		var (
			id int64
			e  domain.WeightEntry
		)
		if err := rows.Scan(&id, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: weight_events row %d: %v", domain.ErrCorruptData, id, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
