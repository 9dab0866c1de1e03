package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "batling",
	Short: "Batling - a backfilling scheduler for discrete-event HPC simulation",
	Long: `Batling is the decision core of a discrete-event HPC job scheduler.

A simulation host posts batches of job events to it and gets back start and
reject decisions, computed by EASY or conservative backfilling with optional
contiguous-resource placement.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "scheduler API URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	// Environment variable wins only when the flag was left at its default
	if envServer := os.Getenv("BATLING_SERVER_URL"); envServer != "" && serverURL == "http://localhost:8080" {
		serverURL = envServer
	}
}

// GetServerURL returns the configured scheduler API URL
func GetServerURL() string {
	return serverURL
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
