// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-size-dashboard/internal/gateway"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
	"github.com/naka-gawa/pr-size-dashboard/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Compute per-repository metrics files from the GitHub API",
	Long: `Lists the merged pull requests of every configured repository,
computes their size scores, and writes one metrics file per repository.
Use this for repositories that do not publish a metrics file themselves.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		var since time.Time
		if sinceStr, _ := cmd.Flags().GetString("since"); sinceStr != "" {
			const inputDateLayout = "2006/01/02"
			parsed, err := time.Parse(inputDateLayout, sinceStr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid --since date format. Please use YYYY/MM/DD. Error: %v\n", err)
				os.Exit(1)
			}
			since = parsed
		}
		outDir, _ := cmd.Flags().GetString("out")

		githubGateway, err := gateway.NewGitHubGateway(token, cfg.MetricsPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		store := storage.NewStore(logger)
		collector := usecase.NewCollector(githubGateway, store, logger)

		if err := collector.Collect(ctx, cfg.Repositories, since, outDir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect metrics: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Collected metrics for %d repositories into %s\n", len(cfg.Repositories), outDir)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().String("since", "", "Only include PRs merged on or after this date (YYYY/MM/DD)")
	collectCmd.Flags().String("out", "metrics", "Directory for the per-repository metrics files")
}
