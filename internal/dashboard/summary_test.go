package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

func fixtureRecords() []domain.MetricRecord {
	mk := func(repo string, pr int, day int, loc int, score float64) domain.MetricRecord {
		return domain.MetricRecord{
			Repo:      repo,
			PRNumber:  pr,
			MergedAt:  time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
			LOC:       loc,
			SizeScore: score,
		}
	}
	return []domain.MetricRecord{
		mk("acme/widgets", 1, 2, 50, 8.0),   // Mon Jun 2
		mk("acme/widgets", 2, 4, 150, 12.0), // Wed Jun 4, over target
		mk("acme/gadgets", 1, 9, 10, 4.0),   // Mon Jun 9
		mk("acme/gadgets", 2, 11, 30, 6.0),  // Wed Jun 11
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(fixtureRecords(), 10.0)

	assert.Equal(t, 4, summary.TotalPRs)
	assert.InDelta(t, 7.5, summary.MeanScore, 1e-9)
	assert.InDelta(t, 7.0, summary.MedianScore, 1e-9)
	assert.InDelta(t, 60.0, summary.MeanLOC, 1e-9)
	assert.InDelta(t, 75.0, summary.SmallPRRatio, 1e-9)
	assert.Equal(t, 10.0, summary.TargetScore)

	require.Len(t, summary.Repos, 2)
	gadgets, widgets := summary.Repos[0], summary.Repos[1]
	assert.Equal(t, "acme/gadgets", gadgets.Repo)
	assert.Equal(t, 2, gadgets.PRCount)
	assert.InDelta(t, 5.0, gadgets.MeanScore, 1e-9)
	assert.Equal(t, "acme/widgets", widgets.Repo)
	assert.InDelta(t, 10.0, widgets.MeanScore, 1e-9)
	assert.InDelta(t, 100.0, widgets.MeanLOC, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, 10.0)
	assert.Equal(t, 0, summary.TotalPRs)
	assert.Zero(t, summary.MeanScore)
	assert.Zero(t, summary.SmallPRRatio)
	assert.Empty(t, summary.Repos)
}

func TestWeeklyMeans(t *testing.T) {
	weeks := WeeklyMeans(fixtureRecords())

	require.Len(t, weeks, 2)
	assert.Equal(t, "2025-06-02", weeks[0].Week)
	assert.InDelta(t, 10.0, weeks[0].MeanScore, 1e-9)
	assert.Equal(t, 2, weeks[0].PRCount)
	assert.Equal(t, "2025-06-09", weeks[1].Week)
	assert.InDelta(t, 5.0, weeks[1].MeanScore, 1e-9)
}

func TestWeekOf(t *testing.T) {
	// Sunday belongs to the week starting the previous Monday.
	sunday := time.Date(2025, 6, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-02", weekOf(sunday))

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-02", weekOf(monday))
}
