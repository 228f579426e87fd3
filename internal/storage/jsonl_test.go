package storage

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

func testStore() *Store {
	return NewStore(log.New(io.Discard, "", 0))
}

func sampleRecords() []domain.MetricRecord {
	return []domain.MetricRecord{
		{
			Repo:         "acme/widgets",
			PRNumber:     2,
			Author:       "alice",
			MergedAt:     time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			Additions:    40,
			Deletions:    10,
			LOC:          50,
			ChangedFiles: 4,
			SizeScore:    domain.SizeScore(40, 10, 4),
		},
		{
			Repo:         "acme/gadgets",
			PRNumber:     7,
			Author:       "bob",
			MergedAt:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			Additions:    300,
			Deletions:    120,
			LOC:          420,
			ChangedFiles: 12,
			SizeScore:    domain.SizeScore(300, 120, 12),
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := testStore()
	path := filepath.Join(t.TempDir(), "data", "combined.jsonl")

	require.NoError(t, store.Save(path, sampleRecords()))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Save sorts by merge time, so the gadgets record comes first.
	assert.Equal(t, "acme/gadgets:7", loaded[0].Key())
	assert.Equal(t, "acme/widgets:2", loaded[1].Key())
	assert.Equal(t, 4, loaded[1].ChangedFiles)
	assert.InDelta(t, domain.SizeScore(40, 10, 4), loaded[1].SizeScore, 1e-9)
}

func TestStore_SaveIsDeterministic(t *testing.T) {
	store := testStore()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jsonl")
	second := filepath.Join(dir, "second.jsonl")

	records := sampleRecords()
	require.NoError(t, store.Save(first, records))

	// Same records in reverse input order must produce identical bytes.
	reversed := []domain.MetricRecord{records[1], records[0]}
	require.NoError(t, store.Save(second, reversed))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := testStore()
	records, err := store.Load(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_DecodeSkipsMalformedLines(t *testing.T) {
	store := testStore()
	input := strings.Join([]string{
		`{"repo":"acme/widgets","pr_number":1,"merged_at":"2025-06-01T09:00:00Z","additions":10,"deletions":5,"loc":15,"changed_files":2,"size_score":3.92}`,
		`this is not json`,
		``,
		`{"repo":"acme/widgets","pr_number":2,"merged_at":"2025-06-02T09:00:00Z","additions":1,"deletions":1,"loc":2,"changed_files":1,"size_score":1.09}`,
	}, "\n")

	records := store.Decode(strings.NewReader(input), "test-input")
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].PRNumber)
	assert.Equal(t, 2, records[1].PRNumber)
}
