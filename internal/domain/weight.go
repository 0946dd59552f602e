// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WeightEntry represents a single weight measurement. Entries are values:
// once constructed they are never modified.
type WeightEntry struct {
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// WeightRepository is the port for weight persistence.
type WeightRepository interface {
	AppendWeightEntry(ctx context.Context, e WeightEntry) error
	ListWeightEntries(ctx context.Context) ([]WeightEntry, error)
}

// NewWeightEntry validates value and builds an entry stamped at at, or at
// the current time when at is zero.
func NewWeightEntry(value float64, at time.Time) (WeightEntry, error) {
	if err := ValidateWeight(value); err != nil {
		return WeightEntry{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}
	return WeightEntry{Value: value, CreatedAt: NormalizeTime(at)}, nil
}

// NormalizeTime strips the monotonic reading and truncates to microseconds,
// the finest precision every backend stores.
func NormalizeTime(t time.Time) time.Time {
	return t.Round(0).Truncate(time.Microsecond)
}

// ValidateWeight reports ErrInvalidValue unless v is finite and > 0.
func ValidateWeight(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, v)
	}
	if v <= 0 {
		return fmt.Errorf("%w: value must be > 0", ErrInvalidValue)
	}
	return nil
}

// ParseWeight parses user input as a positive decimal weight.
func ParseWeight(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidValue)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	if err := ValidateWeight(v); err != nil {
		return 0, err
	}
	return v, nil
}

// FormatWeight renders v in the shortest form that parses back to v.
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
