// Package storage reads and writes line-delimited JSON metric files.
package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store persists metric records as one JSON object per line.
type Store struct {
	logger *log.Logger
}

// NewStore creates a new Store instance.
func NewStore(logger *log.Logger) *Store {
	return &Store{logger: logger}
}

// Decode parses line-delimited metric records from r. Blank lines are
// ignored; a line that fails to parse is skipped and logged, it never
// fails the whole read. The source name is only used in log messages.
func (s *Store) Decode(r io.Reader, source string) []domain.MetricRecord {
	var records []domain.MetricRecord
	scanner := bufio.NewScanner(r)
	// Metric lines are small, but leave headroom for long titles upstream
	// producers may add to the format later.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record domain.MetricRecord
		if err := json.Unmarshal(line, &record); err != nil {
			s.logger.Printf("Skipping malformed line %d in %s: %v", lineNo, source, err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		s.logger.Printf("Stopped reading %s after line %d: %v", source, lineNo, err)
	}
	return records
}

// Load reads the combined dataset at path. A missing file is not an
// error: it means no data has been fetched yet.
func (s *Store) Load(path string) ([]domain.MetricRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return s.Decode(f, path), nil
}

// Save writes records to path, one JSON object per line, sorted by
// merge time. The ordering makes re-runs with unchanged upstream data
// reproduce the file byte for byte.
func (s *Store) Save(path string, records []domain.MetricRecord) error {
	sorted := make([]domain.MetricRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].MergedAt.Equal(sorted[j].MergedAt) {
			return sorted[i].MergedAt.Before(sorted[j].MergedAt)
		}
		return sorted[i].Key() < sorted[j].Key()
	})

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	for _, record := range sorted {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", record.Key(), err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Printf("Wrote %d records to %s", len(sorted), path)
	return nil
}
