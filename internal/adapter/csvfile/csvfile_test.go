package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weighttracker/internal/domain"
)

func newFile(t *testing.T) *File {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data.csv"))
}

func writeRaw(t *testing.T, f *File, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.Path(), []byte(content), 0o644))
}

func TestListWeightEntries_MissingFile(t *testing.T) {
	f := newFile(t)
	got, err := f.ListWeightEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoundTrip(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()
	berlin := time.FixedZone("CET", 3600)

	want := []domain.WeightEntry{
		{Value: 70.5, CreatedAt: time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)},
		{Value: 71.2, CreatedAt: time.Date(2026, 1, 2, 7, 15, 30, 123456000, berlin)},
		{Value: 1.0 / 3.0, CreatedAt: domain.NormalizeTime(time.Now())},
		{Value: 0.1, CreatedAt: time.Date(2026, 1, 2, 7, 15, 30, 123456000, berlin)},
	}
	for _, e := range want {
		require.NoError(t, f.AppendWeightEntry(ctx, e))
	}

	got, err := New(f.Path()).ListWeightEntries(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendWeightEntry_WritesHeaderOnce(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nested", "dir", "data.csv"))
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)

	require.NoError(t, f.AppendWeightEntry(ctx, domain.WeightEntry{Value: 70.5, CreatedAt: at}))
	require.NoError(t, f.AppendWeightEntry(ctx, domain.WeightEntry{Value: 71.2, CreatedAt: at.Add(24 * time.Hour)}))

	raw, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,value\n2026-01-01T07:00:00Z,70.5\n2026-01-02T07:00:00Z,71.2\n",
		string(raw))
}

func TestListWeightEntries_LegacyRows(t *testing.T) {
	f := newFile(t)
	f.loc = time.UTC
	writeRaw(t, f, "date,weight\n2024-05-01,82.4\n2024-05-03,81.9\n")

	got, err := f.ListWeightEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 82.4, got[0].Value)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 81.9, got[1].Value)
}

func TestListWeightEntries_HeaderOptional(t *testing.T) {
	f := newFile(t)
	writeRaw(t, f, "2026-01-01T07:00:00Z,70.5\n\n2026-01-02T07:00:00Z,71.2\n")

	got, err := f.ListWeightEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 70.5, got[0].Value)
	assert.Equal(t, 71.2, got[1].Value)
}

func TestListWeightEntries_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad value", "timestamp,value\n2026-01-01T07:00:00Z,heavy\n"},
		{"bad first row value", "2026-01-01T07:00:00Z,heavy\n"},
		{"bad timestamp", "timestamp,value\nyesterday,70.5\n"},
		{"extra field", "timestamp,value\n2026-01-01T07:00:00Z,70.5,kg\n"},
		{"zero value", "timestamp,value\n2026-01-01T07:00:00Z,0\n"},
		{"unterminated quote", "timestamp,value\n\"2026-01-01,70.5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFile(t)
			writeRaw(t, f, tc.content)
			_, err := f.ListWeightEntries(context.Background())
			require.ErrorIs(t, err, domain.ErrCorruptData)
			assert.Contains(t, err.Error(), f.Path())
		})
	}
}

func TestAppendWeightEntry_Unwritable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the open fail.
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := New(path).AppendWeightEntry(context.Background(), domain.WeightEntry{Value: 70, CreatedAt: time.Now()})
	require.Error(t, err)
}

func TestAppendWeightEntry_NoTrailingNewline(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()
	writeRaw(t, f, "timestamp,value\n2026-01-01T07:00:00Z,70.5")

	at := time.Date(2026, 1, 2, 7, 0, 0, 0, time.UTC)
	require.NoError(t, f.AppendWeightEntry(ctx, domain.WeightEntry{Value: 71.2, CreatedAt: at}))

	raw, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "timestamp,value\n2026-01-01T07:00:00Z,70.5\n2026-01-02T07:00:00Z,71.2\n", string(raw))

	got, err := f.ListWeightEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 71.2, got[1].Value)
}

func TestAppendWeightEntry_SyncFailureLeavesFileUnchanged(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()
	first := domain.WeightEntry{Value: 70.5, CreatedAt: time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)}
	second := domain.WeightEntry{Value: 71.2, CreatedAt: time.Date(2026, 1, 2, 7, 0, 0, 0, time.UTC)}
	require.NoError(t, f.AppendWeightEntry(ctx, first))
	before, err := os.ReadFile(f.Path())
	require.NoError(t, err)

	f.sync = func(*os.File) error { return errors.New("input/output error") }
	require.Error(t, f.AppendWeightEntry(ctx, second))

	after, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// Retrying once the disk recovers writes the row exactly once.
	f.sync = (*os.File).Sync
	require.NoError(t, f.AppendWeightEntry(ctx, second))
	got, err := f.ListWeightEntries(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]domain.WeightEntry{first, second}, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendWeightEntry_SyncFailureOnNewFile(t *testing.T) {
	f := newFile(t)
	f.sync = func(*os.File) error { return errors.New("input/output error") }

	err := f.AppendWeightEntry(context.Background(), domain.WeightEntry{Value: 70, CreatedAt: time.Now()})
	require.Error(t, err)

	got, err := f.ListWeightEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
