package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-verifier/internal/github"
)

var normalizeURLCmd = &cobra.Command{
	Use:   "normalize-url <profile>",
	Short: "Print the canonical repositories URL of a GitHub profile",
	Long:  "Accepts a GitHub username, @handle or profile URL and prints the canonical ?tab=repositories URL and the username.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileURL, username, err := github.NormalizeProfileURL(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", profileURL, username)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "resume_verifier %s\n", version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(normalizeURLCmd)
	rootCmd.AddCommand(versionCmd)
}
