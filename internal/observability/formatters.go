// Package observability provides formatted output, metrics and tracing for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-verifier/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, ending in "..." when cut
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintLinkedInResult outputs the section scores and narrative findings of a LinkedIn verification.
func (p *Printer) PrintLinkedInResult(result *types.VerificationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:  %d/100\n", result.OverallScore))
	if result.LinkedInProfile != nil {
		if name := result.LinkedInProfile.FullName(); name != "" {
			sb.WriteString(fmt.Sprintf("Profile:  %s\n", name))
		}
	}
	sb.WriteString("\n")

	for _, s := range result.SectionScores {
		sb.WriteString(fmt.Sprintf("  %-12s %3d  (weight %.2f)\n", s.Section, s.Score, s.Weight))
	}

	if len(result.Findings) > 0 {
		sb.WriteString("\nFindings:\n")
		count := min(len(result.Findings), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Findings[i]))
		}
		if len(result.Findings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Findings)-maxItemsToShow))
		}
	}

	if len(result.StageErrors) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ %d optional stage(s) failed\n", len(result.StageErrors)))
	}

	p.printBox("LINKEDIN VERIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGithubResult outputs the per-project verdicts of a GitHub verification.
func (p *Printer) PrintGithubResult(result *types.GithubVerificationResult) {
	if result == nil {
		return
	}

	meta := result.RunMetadata
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", meta.ProfileUsername))
	sb.WriteString(fmt.Sprintf("Overall:  %d/100\n", result.OverallScore))
	sb.WriteString(fmt.Sprintf("Matched:  %d of %d projects (%d repos)\n", meta.MatchedProjects, meta.TotalProjects, meta.ReposConsidered))

	if len(result.ProjectResults) > 0 {
		sb.WriteString("\n")
	}
	count := min(len(result.ProjectResults), maxItemsToShow)
	for i := 0; i < count; i++ {
		pr := result.ProjectResults[i]
		sb.WriteString(fmt.Sprintf("%s %s\n", statusMarker(pr.Status), pr.ProjectTitle))
		switch pr.Status {
		case types.StatusMatched:
			sb.WriteString(fmt.Sprintf("    %s  alignment %d\n", pr.RepoName, pr.AlignmentScore))
		case types.StatusFailed:
			if len(pr.RiskFlags) > 0 {
				sb.WriteString(fmt.Sprintf("    %s\n", pr.RiskFlags[0]))
			}
		}
	}
	if len(result.ProjectResults) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more projects", len(result.ProjectResults)-maxItemsToShow))
	}

	p.printBox("GITHUB VERIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobFit outputs the fit score and the missing keywords, must-haves first.
func (p *Printer) PrintJobFit(result *types.JobFitResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fit score: %d/100\n", result.Score))
	sb.WriteString(fmt.Sprintf("Matched:   %d of %d keywords\n", len(result.Matched), len(result.Keywords)))

	if len(result.Missing) > 0 {
		sb.WriteString("\nMissing:\n")
		missing := make([]types.JobKeyword, 0, len(result.Missing))
		for _, priority := range []types.KeywordPriority{types.PriorityMustHave, types.PriorityNiceToHave, types.PriorityOptional} {
			for _, k := range result.Missing {
				if k.Priority == priority {
					missing = append(missing, k)
				}
			}
		}
		count := min(len(missing), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s [%s]\n", missing[i].Text, missing[i].Priority))
		}
		if len(missing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(missing)-maxItemsToShow))
		}
	}

	p.printBox("JOB FIT", strings.TrimSuffix(sb.String(), "\n"))
}

func statusMarker(s types.MatchStatus) string {
	switch s {
	case types.StatusMatched:
		return "✓"
	case types.StatusFailed:
		return "⚠"
	default:
		return "✗"
	}
}
