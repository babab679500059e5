package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-verifier/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [verification-id]",
	Short: "List stored verifications, or print one stored verification as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var (
	historyDBURL    string
	historyResumeID string
	historyKind     string
	historyStatus   string
	historyLimit    int
)

func init() {
	historyCmd.Flags().StringVar(&historyDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	historyCmd.Flags().StringVar(&historyResumeID, "resume-id", "", "Only list verifications of this résumé")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only list this kind (linkedin, github)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only list this status (RUNNING, COMPLETED, FAILED)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of verifications to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	db, err := a.openStore(ctx, historyDBURL)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("a database is required (set DATABASE_URL or use --db-url)")
	}
	defer db.Close()

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid verification id: %w", err)
		}
		v, err := db.GetVerification(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("verification not found: %s", id)
		}
		return writeJSON(cmd.OutOrStdout(), "", v)
	}

	list, err := db.ListVerifications(ctx, store.ListFilters{
		ResumeID: historyResumeID,
		Kind:     historyKind,
		Status:   historyStatus,
		Limit:    historyLimit,
	})
	if err != nil {
		return err
	}
	return printHistory(cmd, list)
}

func printHistory(cmd *cobra.Command, list []store.Verification) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRESUME\tKIND\tSTATUS\tPROFILE\tCREATED")
	for _, v := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.ResumeID, v.Kind, v.Status, v.ProfileURL, v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
