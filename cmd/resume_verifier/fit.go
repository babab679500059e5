package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-verifier/internal/fetch"
	"github.com/jonathan/resume-verifier/internal/ingestion"
	"github.com/jonathan/resume-verifier/internal/jobfit"
	"github.com/jonathan/resume-verifier/internal/resume"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Score how well a résumé covers a job description",
	Long: `Extracts prioritized keywords from a job description (a file or a URL) and reports which of them
the résumé covers, with a weighted fit score.`,
	RunE: runFit,
}

var (
	fitResume string
	fitJob    string
	fitOut    string
)

func init() {
	fitCmd.Flags().StringVarP(&fitResume, "resume", "r", "", "Path to the résumé JSON file (required)")
	fitCmd.Flags().StringVarP(&fitJob, "job", "j", "", "Path to the job posting (PDF, text, markdown, HTML) or its URL (required)")
	fitCmd.Flags().StringVarP(&fitOut, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = fitCmd.MarkFlagRequired("resume")
	_ = fitCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(fitCmd)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// jobText reads the job description from a file, or fetches it when source is a URL
func jobText(ctx context.Context, source string, scraper fetch.Scraper) (string, error) {
	var (
		doc *ingestion.Document
		err error
	)
	if isURL(source) {
		doc, err = ingestion.IngestFromURL(ctx, scraper, source)
	} else {
		if _, statErr := os.Stat(source); statErr != nil {
			return "", fmt.Errorf("job file not found: %w", statErr)
		}
		doc, err = ingestion.IngestFromFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return doc.Text, nil
}

func runFit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, _, err := readResume(fitResume)
	if err != nil {
		return err
	}
	r, err := resume.NormalizeJSON(data)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	description, err := jobText(ctx, fitJob, jobScraper(a))
	if err != nil {
		return err
	}

	extractor, err := a.extractor(ctx)
	if err != nil {
		return err
	}
	analyzer, err := jobfit.NewAnalyzer(extractor, a.logger)
	if err != nil {
		return err
	}
	result, err := analyzer.Fit(ctx, r, description)
	if err != nil {
		return fmt.Errorf("job fit failed: %w", err)
	}

	if verbose {
		a.printer.PrintJobFit(result)
	}
	return writeJSON(cmd.OutOrStdout(), fitOut, result)
}

// jobScraper fetches postings through the configured scraper, keeping only the posting body
// on the direct path.
func jobScraper(a *app) fetch.Scraper {
	if a.cfg.Scraper.FirecrawlAPIKey != "" {
		return a.scraper()
	}
	opts := fetch.DefaultOptions()
	opts.Timeout = a.cfg.Scraper.Timeout
	return fetch.ScraperFunc(func(ctx context.Context, url string) (string, error) {
		res, err := fetch.URL(ctx, url, opts)
		if err != nil {
			return "", err
		}
		platform := fetch.DetectPlatform(url)
		selectors := fetch.ContentSelectors(platform)
		if platform == fetch.PlatformUnknown {
			selectors = fetch.JobPostingSelectors()
		}
		return fetch.ExtractMainText(res.HTML, selectors, fetch.NoiseSelectors(platform)...)
	})
}
