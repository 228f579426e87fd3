// Package dashboard serves the local web UI that visualizes the
// combined dataset against the target score line.
package dashboard

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

// Summary holds the headline numbers shown at the top of the dashboard
// and returned by the JSON endpoint.
type Summary struct {
	TotalPRs    int     `json:"total_prs"`
	MeanScore   float64 `json:"mean_score"`
	MedianScore float64 `json:"median_score"`
	MeanLOC     float64 `json:"mean_loc"`
	// SmallPRRatio is the share of PRs at or under the target score,
	// in percent.
	SmallPRRatio float64       `json:"small_pr_ratio"`
	TargetScore  float64       `json:"target_score"`
	Repos        []RepoSummary `json:"repos"`
}

// RepoSummary aggregates one repository's records.
type RepoSummary struct {
	Repo        string  `json:"repo"`
	PRCount     int     `json:"pr_count"`
	MeanScore   float64 `json:"mean_score"`
	MedianScore float64 `json:"median_score"`
	MeanLOC     float64 `json:"mean_loc"`
}

// WeekSummary is one bucket of the weekly mean-score chart.
type WeekSummary struct {
	Week      string  `json:"week"`
	MeanScore float64 `json:"mean_score"`
	PRCount   int     `json:"pr_count"`
}

// Summarize computes the dashboard summary over the whole dataset.
func Summarize(records []domain.MetricRecord, target float64) *Summary {
	summary := &Summary{
		TotalPRs:    len(records),
		TargetScore: target,
		Repos:       []RepoSummary{},
	}
	if len(records) == 0 {
		return summary
	}

	scores := make([]float64, 0, len(records))
	locs := make([]float64, 0, len(records))
	small := 0
	byRepo := make(map[string][]domain.MetricRecord)
	for _, record := range records {
		scores = append(scores, record.SizeScore)
		locs = append(locs, float64(record.LOC))
		if record.SizeScore <= target {
			small++
		}
		byRepo[record.Repo] = append(byRepo[record.Repo], record)
	}

	summary.MeanScore = mean(scores)
	summary.MedianScore = median(scores)
	summary.MeanLOC = mean(locs)
	summary.SmallPRRatio = float64(small) / float64(len(records)) * 100

	for repo, repoRecords := range byRepo {
		repoScores := make([]float64, 0, len(repoRecords))
		repoLOCs := make([]float64, 0, len(repoRecords))
		for _, record := range repoRecords {
			repoScores = append(repoScores, record.SizeScore)
			repoLOCs = append(repoLOCs, float64(record.LOC))
		}
		summary.Repos = append(summary.Repos, RepoSummary{
			Repo:        repo,
			PRCount:     len(repoRecords),
			MeanScore:   mean(repoScores),
			MedianScore: median(repoScores),
			MeanLOC:     mean(repoLOCs),
		})
	}
	sort.Slice(summary.Repos, func(i, j int) bool {
		return summary.Repos[i].Repo < summary.Repos[j].Repo
	})

	return summary
}

// WeeklyMeans buckets records by the Monday of their merge week and
// averages the scores per bucket, in chronological order.
func WeeklyMeans(records []domain.MetricRecord) []WeekSummary {
	byWeek := make(map[string][]float64)
	for _, record := range records {
		week := weekOf(record.MergedAt)
		byWeek[week] = append(byWeek[week], record.SizeScore)
	}

	weeks := make([]WeekSummary, 0, len(byWeek))
	for week, scores := range byWeek {
		weeks = append(weeks, WeekSummary{
			Week:      week,
			MeanScore: mean(scores),
			PRCount:   len(scores),
		})
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Week < weeks[j].Week
	})
	return weeks
}

// weekOf returns the date of the Monday of t's week, which sorts
// correctly as a plain string.
func weekOf(t time.Time) string {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -daysSinceMonday).Format("2006-01-02")
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

func median(values []float64) float64 {
	m, err := stats.Median(values)
	if err != nil {
		return 0
	}
	return m
}
