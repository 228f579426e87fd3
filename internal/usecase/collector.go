package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
	"github.com/naka-gawa/pr-size-dashboard/internal/gateway"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
)

// Collector computes per-repository metrics files straight from the
// GitHub API, for repositories that do not publish one themselves.
type Collector struct {
	fetcher gateway.Fetcher
	store   *storage.Store
	logger  *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, store *storage.Store, logger *log.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// MetricsFileName returns the local file name for a repository's
// collected metrics, e.g. "acme/widgets" -> "acme-widgets.jsonl".
func MetricsFileName(repo string) string {
	return strings.ReplaceAll(repo, "/", "-") + ".jsonl"
}

// Collect lists merged PRs of each repository since the given time,
// scores them, and writes one metrics file per repository under outDir.
// Repositories are collected concurrently.
func (c *Collector) Collect(ctx context.Context, repos []string, since time.Time, outDir string) error {
	c.logger.Printf("Usecase: Collecting merged PR metrics for %d repositories...", len(repos))

	eg, egCtx := errgroup.WithContext(ctx)
	for _, repo := range repos {
		eg.Go(func() error {
			prs, err := c.fetcher.ListMergedPRs(egCtx, repo, since)
			if err != nil {
				return fmt.Errorf("failed to list merged PRs of %s: %w", repo, err)
			}

			records := make([]domain.MetricRecord, 0, len(prs))
			for _, pr := range prs {
				records = append(records, domain.MetricRecord{
					Repo:         repo,
					PRNumber:     pr.Number,
					Author:       pr.Author,
					MergedAt:     pr.MergedAt,
					Additions:    pr.Additions,
					Deletions:    pr.Deletions,
					LOC:          pr.Additions + pr.Deletions,
					ChangedFiles: pr.ChangedFiles,
					SizeScore:    domain.SizeScore(pr.Additions, pr.Deletions, pr.ChangedFiles),
				})
			}

			return c.store.Save(filepath.Join(outDir, MetricsFileName(repo)), records)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	c.logger.Println("Usecase: Collection complete.")
	return nil
}
