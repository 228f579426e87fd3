// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-size-dashboard/internal/dashboard"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local dashboard",
	Long: `Starts the dashboard web server on the configured address (default
:8501). The dashboard reads the combined dataset on every page load, so
running "prsize fetch" in another terminal and reloading is enough to
see fresh data.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)

		store := storage.NewStore(logger)
		server, err := dashboard.New(cfg.Dashboard, store, cfg.Output, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create dashboard server: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start dashboard server: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Dashboard running on %s (Ctrl+C to stop)\n", cfg.Dashboard.Address)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop dashboard server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
