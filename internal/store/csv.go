package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVStore writes the master table as a CSV file with a header row
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSV store writing to path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Location returns the output path
func (s *CSVStore) Location() string {
	return s.path
}

// Write replaces the file atomically: rows land in a temp file that is renamed
// into place only after a complete, flushed write.
func (s *CSVStore) Write(ctx context.Context, rows []Row) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(r.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", r.MasterID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit output: %w", err)
	}
	return nil
}

// Close is a no-op for CSV output
func (s *CSVStore) Close() error {
	return nil
}
