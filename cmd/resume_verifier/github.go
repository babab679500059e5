package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/github"
	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/store"
	"github.com/jonathan/resume-verifier/internal/types"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Verify résumé projects against a GitHub profile",
	Long: `Scrapes the GitHub profile named by --url (or found in the résumé), matches each résumé project to one of its
repositories and checks the project's claims against the repository page.

With a database configured, a completed verification of the same résumé and profile from the last 24 hours
is returned instead of running again, unless --force is set.`,
	RunE: runGithub,
}

var (
	githubResume   string
	githubURL      string
	githubOut      string
	githubDBURL    string
	githubResumeID string
	githubForce    bool
)

func init() {
	githubCmd.Flags().StringVarP(&githubResume, "resume", "r", "", "Path to the résumé JSON file (required)")
	githubCmd.Flags().StringVarP(&githubURL, "url", "u", "", "GitHub profile URL or username (default: the résumé's GitHub link)")
	githubCmd.Flags().StringVarP(&githubOut, "out", "o", "", "Path to output JSON file (default stdout)")
	githubCmd.Flags().StringVar(&githubDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	githubCmd.Flags().StringVar(&githubResumeID, "resume-id", "", "Résumé identifier used for persistence and reuse")
	githubCmd.Flags().BoolVar(&githubForce, "force", false, "Run even when a recent verification exists")

	_ = githubCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(githubCmd)
}

// reuseFinder is the part of store.Store used to look up a recent result
type reuseFinder interface {
	FindRecentGithubVerification(ctx context.Context, resumeID, profileURL string) (*store.Verification, error)
}

// findReusable returns a recent completed result for the résumé and profile, or nil
func findReusable(ctx context.Context, f reuseFinder, resumeID, profileURL string) (*types.GithubVerificationResult, error) {
	v, err := f.FindRecentGithubVerification(ctx, resumeID, profileURL)
	if err != nil || v == nil {
		return nil, err
	}
	return v.GithubResult()
}

func runGithub(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, raw, err := readResume(githubResume)
	if err != nil {
		return err
	}
	profileURL, _, err := github.NormalizeProfileURL(resume.ResolveGitHubURL(githubURL, data))
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	db, err := a.openStore(ctx, githubDBURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	if db != nil && githubResumeID != "" && !githubForce {
		reused, err := findReusable(ctx, db, githubResumeID, profileURL)
		if err != nil {
			a.logger.Warn("failed to look up a recent verification", zap.Error(err))
		}
		if reused != nil {
			a.logger.Info("reusing recent verification",
				zap.String("run_id", reused.RunID),
				zap.String("url", profileURL))
			if verbose {
				a.printer.PrintGithubResult(reused)
			}
			return writeJSON(cmd.OutOrStdout(), githubOut, reused)
		}
	}

	extractor, err := a.extractor(ctx)
	if err != nil {
		return err
	}
	p, err := github.New(extractor, a.scraper(),
		github.WithConcurrency(a.cfg.GitHub.Concurrency),
		github.WithLogger(a.logger),
		github.WithMetrics(a.metrics),
		github.WithProgress(a.progress(cmd)),
	)
	if err != nil {
		return err
	}

	var record *persisted
	if db != nil {
		if record, err = startRecord(ctx, db, githubResumeID, store.KindGitHub, profileURL); err != nil {
			return err
		}
	}

	result, err := p.Verify(ctx, github.Input{Resume: raw, ProfileURL: profileURL})
	if err != nil {
		record.fail(ctx, a.logger, err)
		return fmt.Errorf("GitHub verification failed: %w", err)
	}
	record.complete(ctx, a.logger, result)

	if verbose {
		a.printer.PrintGithubResult(result)
	}
	return writeJSON(cmd.OutOrStdout(), githubOut, result)
}
