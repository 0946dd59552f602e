// Package csvfile stores weight entries in a line-oriented CSV file.
//
// The file starts with a "timestamp,value" header followed by one row per
// entry. Timestamps are RFC 3339 with nanoseconds; rows holding a bare
// YYYY-MM-DD date are read as local midnight of that day.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"weighttracker/internal/domain"
)

const dateLayout = "2006-01-02"

var header = []string{"timestamp", "value"}

// File is a CSV-backed weight repository.
type File struct {
	path string
	loc  *time.Location
	sync func(*os.File) error
}

// New returns a repository reading and appending to path. The file is
// created on the first append.
func New(path string) *File {
	return &File{path: path, loc: time.Local, sync: (*os.File).Sync}
}

var _ domain.WeightRepository = (*File)(nil)

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// AppendWeightEntry appends one row, writing the header first when the file
// is new or empty. A file whose last line has no terminating newline gets
// one before the row. If the row cannot be written and synced the file is
// cut back to its previous size, so a failed append leaves nothing behind.
func (f *File) AppendWeightEntry(ctx context.Context, e domain.WeightEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fh, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return err
	}
	size := info.Size()

	var buf bytes.Buffer
	if size > 0 {
		last := make([]byte, 1)
		if _, err := fh.ReadAt(last, size-1); err != nil {
			_ = fh.Close()
			return fmt.Errorf("csvfile: read %s: %w", f.path, err)
		}
		if last[0] != '\n' {
			buf.WriteByte('\n')
		}
	}
	w := csv.NewWriter(&buf)
	if size == 0 {
		_ = w.Write(header)
	}
	_ = w.Write([]string{e.CreatedAt.Format(time.RFC3339Nano), domain.FormatWeight(e.Value)})
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("csvfile: encode row: %w", err)
	}

	if _, err := fh.Write(buf.Bytes()); err != nil {
		return f.rollback(fh, size, fmt.Errorf("csvfile: write %s: %w", f.path, err))
	}
	if err := f.sync(fh); err != nil {
		return f.rollback(fh, size, fmt.Errorf("csvfile: sync %s: %w", f.path, err))
	}
	// The row is durable once synced; a close error cannot undo that.
	_ = fh.Close()
	return nil
}

// rollback truncates the file to size and closes it, returning cause.
func (f *File) rollback(fh *os.File, size int64, cause error) error {
	if err := fh.Truncate(size); err != nil {
		cause = fmt.Errorf("%w (rollback failed: %v)", cause, err)
	}
	_ = fh.Close()
	return cause
}

// ListWeightEntries reads every row in file order. A missing file yields no
// entries; a file that cannot be parsed yields domain.ErrCorruptData.
func (f *File) ListWeightEntries(ctx context.Context) ([]domain.WeightEntry, error) {
	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []domain.WeightEntry
	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, f.corrupt(perr.Line, perr.Err.Error())
			}
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if len(rec) != 2 {
			return nil, f.corrupt(line, fmt.Sprintf("expected 2 fields, got %d", len(rec)))
		}
		if first && f.isHeader(rec) {
			continue
		}
		e, err := f.parseRow(rec)
		if err != nil {
			return nil, f.corrupt(line, err.Error())
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *File) parseRow(rec []string) (domain.WeightEntry, error) {
	at, err := f.parseTime(rec[0])
	if err != nil {
		return domain.WeightEntry{}, err
	}
	v, err := strconv.ParseFloat(rec[1], 64)
	if err != nil {
		return domain.WeightEntry{}, fmt.Errorf("bad value %q", rec[1])
	}
	if err := domain.ValidateWeight(v); err != nil {
		return domain.WeightEntry{}, err
	}
	return domain.WeightEntry{Value: v, CreatedAt: at}, nil
}

func (f *File) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, f.loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

func (f *File) corrupt(line int, msg string) error {
	return fmt.Errorf("%w: %s line %d: %s", domain.ErrCorruptData, f.path, line, msg)
}

// isHeader reports whether rec is a column header rather than data. Files
// written by older tools may use other column names, so a first row counts
// when neither column parses.
func (f *File) isHeader(rec []string) bool {
	if rec[0] == header[0] && rec[1] == header[1] {
		return true
	}
	if _, err := f.parseTime(rec[0]); err == nil {
		return false
	}
	_, err := strconv.ParseFloat(rec[1], 64)
	return err != nil
}
