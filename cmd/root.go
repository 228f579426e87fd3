// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-size-dashboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "prsize",
	Short: "Aggregate and visualize pull-request size scores.",
	Long: `prsize aggregates pull-request size metrics from multiple GitHub
repositories into one combined dataset and serves a local dashboard
that plots the size score against a target line.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the configuration file")
}

// newLogger builds the logger shared by all subcommands: silent by
// default, standard error when --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadConfig reads the configuration named by the --config flag.
// A missing or malformed config is fatal.
func loadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.InheritedFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
