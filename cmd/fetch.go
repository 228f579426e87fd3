// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-size-dashboard/internal/gateway"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
	"github.com/naka-gawa/pr-size-dashboard/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch per-repository metrics files and merge them into the combined dataset",
	Long: `Fetches the metrics file of every configured repository, merges the
records into the existing combined dataset keyed by (repo, pr_number),
and writes the result back as line-delimited JSON. Repositories without
a metrics file are skipped and reported; they never abort the run.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(token, cfg.MetricsPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		store := storage.NewStore(logger)
		aggregator := usecase.NewAggregator(githubGateway, store, logger)

		summary, err := aggregator.Run(ctx, cfg.Repositories, cfg.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate metrics: %v\n", err)
			os.Exit(1)
		}

		for _, repo := range summary.Repos {
			if repo.Err != nil {
				fmt.Printf("- %s: skipped (%v)\n", repo.Repo, repo.Err)
				continue
			}
			fmt.Printf("- %s: %d records\n", repo.Repo, repo.Records)
		}
		fmt.Printf("Total: %d records saved to %s\n", summary.Total, cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
