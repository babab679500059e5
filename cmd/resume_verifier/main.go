// Package main provides the resume_verifier CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	verbose    bool
	jsonLogs   bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_verifier",
	Short: "Verify résumé claims against LinkedIn and GitHub",
	Long: `resume_verifier cross-checks a structured résumé against a LinkedIn PDF export and a GitHub profile,
and scores its fit against a job description.

Configuration is read from --config, or config.yaml in the working directory or $HOME/.resume-verifier,
then from RV_ environment variables (for example RV_LLM_PROVIDER=openai).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs and stage progress")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
