package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/ingestion"
	"github.com/jonathan/resume-verifier/internal/linkedin"
	"github.com/jonathan/resume-verifier/internal/store"
)

var linkedinCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Verify a résumé against a LinkedIn PDF export",
	Long: `Extracts a structured profile from a LinkedIn PDF (or its text), scores every résumé section against it
and writes the verification result, including a markdown report, as JSON.`,
	RunE: runLinkedIn,
}

var (
	linkedinResume   string
	linkedinSource   string
	linkedinOut      string
	linkedinDBURL    string
	linkedinResumeID string
	linkedinReport   string
)

func init() {
	linkedinCmd.Flags().StringVarP(&linkedinResume, "resume", "r", "", "Path to the résumé JSON file (required)")
	linkedinCmd.Flags().StringVarP(&linkedinSource, "linkedin", "l", "", "Path to the LinkedIn PDF export or extracted text (required)")
	linkedinCmd.Flags().StringVarP(&linkedinOut, "out", "o", "", "Path to output JSON file (default stdout)")
	linkedinCmd.Flags().StringVar(&linkedinReport, "report", "", "Also write the markdown report to this path")
	linkedinCmd.Flags().StringVar(&linkedinDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	linkedinCmd.Flags().StringVar(&linkedinResumeID, "resume-id", "", "Résumé identifier used when persisting the result")

	_ = linkedinCmd.MarkFlagRequired("resume")
	_ = linkedinCmd.MarkFlagRequired("linkedin")

	rootCmd.AddCommand(linkedinCmd)
}

func runLinkedIn(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, raw, err := readResume(linkedinResume)
	if err != nil {
		return err
	}
	doc, err := ingestion.IngestFromFile(linkedinSource)
	if err != nil {
		return fmt.Errorf("failed to read LinkedIn export: %w", err)
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Debug("ingested LinkedIn export",
		zap.String("source", linkedinSource),
		zap.Int("pages", doc.Metadata.Pages),
		zap.Int("words", doc.Metadata.WordCount))

	db, err := a.openStore(ctx, linkedinDBURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	extractor, err := a.extractor(ctx)
	if err != nil {
		return err
	}
	p, err := linkedin.New(extractor,
		linkedin.WithWeights(a.cfg.LinkedIn.Weights),
		linkedin.WithLogger(a.logger),
		linkedin.WithMetrics(a.metrics),
		linkedin.WithProgress(a.progress(cmd)),
	)
	if err != nil {
		return err
	}

	var record *persisted
	if db != nil {
		if record, err = startRecord(ctx, db, linkedinResumeID, store.KindLinkedIn, linkedinSource); err != nil {
			return err
		}
	}

	result, err := p.Verify(ctx, linkedin.Input{Resume: raw, SourceText: doc.Text})
	if err != nil {
		record.fail(ctx, a.logger, err)
		return fmt.Errorf("LinkedIn verification failed: %w", err)
	}
	record.complete(ctx, a.logger, result)

	if verbose {
		a.printer.PrintLinkedInResult(result)
	}
	if linkedinReport != "" {
		if err := writeText(linkedinReport, result.Report); err != nil {
			return err
		}
	}
	return writeJSON(cmd.OutOrStdout(), linkedinOut, result)
}
