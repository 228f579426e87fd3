package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSizeScore uses a table-driven approach to test the score formula.
func TestSizeScore(t *testing.T) {
	testCases := []struct {
		name         string
		additions    int
		deletions    int
		changedFiles int
		expected     float64
	}{
		{
			name:         "typical small PR stays below the target line",
			additions:    40,
			deletions:    10,
			changedFiles: 4,
			expected:     math.Log(51) * 2, // ~7.86
		},
		{
			name:         "zero changed files scores zero regardless of line counts",
			additions:    5000,
			deletions:    3000,
			changedFiles: 0,
			expected:     0,
		},
		{
			name:         "empty PR scores zero",
			additions:    0,
			deletions:    0,
			changedFiles: 0,
			expected:     0,
		},
		{
			name:         "single file with no line changes scores zero via log(1)",
			additions:    0,
			deletions:    0,
			changedFiles: 1,
			expected:     0,
		},
		{
			name:         "large PR",
			additions:    900,
			deletions:    100,
			changedFiles: 25,
			expected:     math.Log(1001) * 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SizeScore(tc.additions, tc.deletions, tc.changedFiles)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestSizeScore_MatchesFormula(t *testing.T) {
	// Sweep a grid of inputs and check against the formula directly.
	for adds := 0; adds <= 200; adds += 40 {
		for dels := 0; dels <= 200; dels += 40 {
			for files := 0; files <= 20; files += 5 {
				want := math.Log(float64(adds+dels+1)) * math.Sqrt(float64(files))
				assert.InDelta(t, want, SizeScore(adds, dels, files), 1e-9)
			}
		}
	}
}

func TestMetricRecord_Key(t *testing.T) {
	record := MetricRecord{
		Repo:     "acme/widgets",
		PRNumber: 42,
		MergedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "acme/widgets:42", record.Key())
}
