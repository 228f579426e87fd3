// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"math"
	"time"
)

// TargetScore is the size score a pull request should stay under.
// It is rendered as a horizontal reference line on the dashboard,
// not enforced anywhere.
const TargetScore = 10.0

// MetricRecord holds the size metrics for a single merged pull request.
// It is the core domain entity of this application. The JSON field names
// are the wire format of the per-repository metrics files and must not
// change.
type MetricRecord struct {
	Repo         string    `json:"repo"`
	PRNumber     int       `json:"pr_number"`
	Author       string    `json:"author"`
	MergedAt     time.Time `json:"merged_at"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	LOC          int       `json:"loc"`
	ChangedFiles int       `json:"changed_files"`
	SizeScore    float64   `json:"size_score"`
}

// Key returns the identity of the record in the combined dataset.
// (repo, pr_number) is unique after merging.
func (r MetricRecord) Key() string {
	return fmt.Sprintf("%s:%d", r.Repo, r.PRNumber)
}

// SizeScore computes the size score for a pull request:
// log(additions+deletions+1) * sqrt(changed_files).
// A pull request that changes no files scores 0 regardless of line counts.
func SizeScore(additions, deletions, changedFiles int) float64 {
	if changedFiles <= 0 {
		return 0
	}
	return math.Log(float64(additions+deletions+1)) * math.Sqrt(float64(changedFiles))
}
