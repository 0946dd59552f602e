// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"weighttracker/internal/domain"
)

// ErrUnavailable is returned while the database is marked as failing.
var ErrUnavailable = errors.New("memory: storage unavailable")

// DB implements an in-memory database storage.
type DB struct {
	mu      sync.Mutex
	weights []domain.WeightEntry
	failing bool
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.WeightRepository = (*DB)(nil)

// SetFailing makes every subsequent write fail with ErrUnavailable until it
// is called again with false.
func (db *DB) SetFailing(failing bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failing = failing
}

// AppendWeightEntry appends a weight entry.
func (db *DB) AppendWeightEntry(ctx context.Context, e domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.failing {
		return ErrUnavailable
	}
	db.weights = append(db.weights, e)
	return nil
}

// ListWeightEntries returns a copy of all entries in insertion order.
func (db *DB) ListWeightEntries(ctx context.Context) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.weights), nil
}
