// Package usecase contains the business logic of the application.
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
	"github.com/naka-gawa/pr-size-dashboard/internal/gateway"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
)

// Aggregator is the use case for building the combined dataset.
// It orchestrates fetching the per-repository metrics files and merging
// them into the existing combined file.
type Aggregator struct {
	fetcher gateway.Fetcher
	store   *storage.Store
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, store *storage.Store, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// RepoFetch reports the outcome of fetching one repository's metrics file.
type RepoFetch struct {
	Repo    string
	Records int
	Err     error
}

// RunSummary is what the operator sees after a fetch run.
type RunSummary struct {
	Repos []RepoFetch
	Total int
	// Failures collects the per-repository fetch errors. The run itself
	// still succeeds; a broken source only means its records are absent.
	Failures error
}

// FetchAll retrieves the metrics file of each repository in order and
// parses it into records. A repository whose source is missing or
// unreachable is skipped; malformed lines are skipped inside Decode.
// Fetching is deliberately sequential: this is a manually invoked batch
// tool and the repository lists are short.
func (a *Aggregator) FetchAll(ctx context.Context, repos []string) ([]domain.MetricRecord, []RepoFetch) {
	a.logger.Println("Usecase: Starting metrics fetch...")

	var all []domain.MetricRecord
	results := make([]RepoFetch, 0, len(repos))
	for _, repo := range repos {
		content, err := a.fetcher.FetchMetricsFile(ctx, repo)
		if err != nil {
			a.logger.Printf("Skipping %s: %v", repo, err)
			results = append(results, RepoFetch{Repo: repo, Err: err})
			continue
		}
		records := a.store.Decode(bytes.NewReader(content), repo)
		all = append(all, records...)
		results = append(results, RepoFetch{Repo: repo, Records: len(records)})
	}

	a.logger.Printf("Usecase: Fetched %d records from %d repositories.", len(all), len(repos))
	return all, results
}

// Merge combines a freshly fetched batch with the existing dataset,
// keyed by (repo, pr_number). A batch record replaces an existing one
// with the same key; all other existing records are preserved. The
// operation is idempotent: merging the same batch twice changes nothing.
func Merge(existing, batch []domain.MetricRecord) []domain.MetricRecord {
	byKey := make(map[string]domain.MetricRecord, len(existing)+len(batch))
	for _, record := range existing {
		byKey[record.Key()] = record
	}
	for _, record := range batch {
		byKey[record.Key()] = record
	}

	merged := make([]domain.MetricRecord, 0, len(byKey))
	for _, record := range byKey {
		merged = append(merged, record)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Key() < merged[j].Key()
	})
	return merged
}

// Run performs one fetch+merge cycle against the combined file at output.
// Loading and saving the combined file are the only fatal failures;
// per-repository problems end up in the summary instead.
func (a *Aggregator) Run(ctx context.Context, repos []string, output string) (*RunSummary, error) {
	existing, err := a.store.Load(output)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing dataset: %w", err)
	}

	batch, results := a.FetchAll(ctx, repos)
	merged := Merge(existing, batch)

	if err := a.store.Save(output, merged); err != nil {
		return nil, fmt.Errorf("failed to write combined dataset: %w", err)
	}

	summary := &RunSummary{Repos: results, Total: len(merged)}
	for _, result := range results {
		if result.Err != nil {
			summary.Failures = multierror.Append(summary.Failures, fmt.Errorf("%s: %w", result.Repo, result.Err))
		}
	}
	return summary, nil
}
