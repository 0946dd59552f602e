// Package app holds the application services and business logic.
package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"weighttracker/internal/domain"
)

// RecordStore is the ordered, append-only collection of weight entries for
// one session, optionally backed by a repository.
//
// Entries that could not be written stay queued as pending. They remain part
// of the session and are written, in order, before any later entry.
type RecordStore struct {
	repo    domain.WeightRepository
	log     *zap.Logger
	loc     *time.Location
	entries []domain.WeightEntry
	pending []domain.WeightEntry
}

// NewRecordStore creates an empty store. A nil repo keeps entries for the
// session only.
func NewRecordStore(repo domain.WeightRepository, log *zap.Logger) *RecordStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordStore{repo: repo, log: log, loc: time.Local}
}

// LoadRecordStore creates a store holding everything repo already contains.
// Unreadable or invalid stored data is reported as domain.ErrCorruptData.
func LoadRecordStore(ctx context.Context, repo domain.WeightRepository, log *zap.Logger) (*RecordStore, error) {
	s := NewRecordStore(repo, log)
	if repo == nil {
		return s, nil
	}
	entries, err := repo.ListWeightEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for i, e := range entries {
		if err := domain.ValidateWeight(e.Value); err != nil {
			return nil, fmt.Errorf("load records: %w: entry %d: %v", domain.ErrCorruptData, i+1, err)
		}
	}
	s.entries = entries
	s.log.Debug("records loaded", zap.Int("count", len(entries)))
	return s, nil
}

// Add validates value and appends a new entry stamped at at (now when zero).
//
// When the write to the repository fails, the entry is still kept and
// returned along with an error wrapping domain.ErrPersistence.
func (s *RecordStore) Add(ctx context.Context, value float64, at time.Time) (domain.WeightEntry, error) {
	e, err := domain.NewWeightEntry(value, at)
	if err != nil {
		return domain.WeightEntry{}, err
	}
	s.entries = append(s.entries, e)
	if s.repo == nil {
		return e, nil
	}
	s.pending = append(s.pending, e)
	if err := s.Flush(ctx); err != nil {
		return e, err
	}
	return e, nil
}

// Flush writes pending entries in order. It stops at the first failure.
func (s *RecordStore) Flush(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	for len(s.pending) > 0 {
		if err := s.repo.AppendWeightEntry(ctx, s.pending[0]); err != nil {
			s.log.Warn("write weight entry",
				zap.Error(err),
				zap.Int("pending", len(s.pending)),
			)
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		s.pending = s.pending[1:]
	}
	return nil
}

// Pending returns the number of entries not yet written.
func (s *RecordStore) Pending() int {
	return len(s.pending)
}

// List returns all entries in insertion order.
func (s *RecordStore) List() []domain.WeightEntry {
	out := slices.Clone(s.entries)
	if out == nil {
		out = []domain.WeightEntry{}
	}
	return out
}

// Trend returns the derived trend for every entry.
func (s *RecordStore) Trend() []domain.TrendPoint {
	return domain.Trend(s.entries, s.loc)
}

// Summary condenses all entries.
func (s *RecordStore) Summary() domain.Summary {
	return domain.Summarize(s.entries)
}
