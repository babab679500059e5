package linkedin

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-verifier/internal/types"
)

// StatusIcon returns the report marker for an entry status
func StatusIcon(s types.MatchStatus) string {
	switch s {
	case types.StatusMatched:
		return "✅"
	case types.StatusPartial:
		return "⚠️"
	default:
		return "❌"
	}
}

// RenderReport renders a markdown report from the scores and narrative output.
// The output depends only on its arguments.
func RenderReport(r *types.NormalizedResume, scores Scores, findings, assertions []string) string {
	var b strings.Builder

	b.WriteString("# Verification Report\n\n")
	if name := r.FullName(); name != "" {
		fmt.Fprintf(&b, "Candidate: **%s**\n\n", escapeCell(name))
	}
	fmt.Fprintf(&b, "**Overall score: %d/100** (%s)\n\n", scores.Overall, ScoringMethod)

	b.WriteString("## Sections\n\n")
	b.WriteString("| Section | Score | Weight | Coverage | Rationale |\n")
	b.WriteString("|---------|------:|-------:|---------:|-----------|\n")
	for _, s := range scores.Sections {
		fmt.Fprintf(&b, "| %s | %d | %.2f | %.0f%% | %s |\n",
			s.Section, s.Score, s.Weight, s.Coverage*100, escapeCell(s.Rationale))
	}
	b.WriteString("\n")

	writeMatches(&b, "Experience", scores.ExperienceMatches)
	writeMatches(&b, "Education", scores.EducationMatches)

	b.WriteString("## Narrative Findings\n\n")
	if len(findings) == 0 {
		b.WriteString("_No narrative findings._\n\n")
	} else {
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(f))
		}
		b.WriteString("\n")
	}

	if len(assertions) > 0 {
		b.WriteString("## Résumé Assertions\n\n")
		for _, a := range assertions {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(a))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeMatches(b *strings.Builder, title string, matches []types.EntryMatch) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(matches) == 0 {
		b.WriteString("_No entries on the résumé._\n\n")
		return
	}
	b.WriteString("| | Résumé | LinkedIn | Score |\n")
	b.WriteString("|---|--------|----------|------:|\n")
	for _, m := range matches {
		match := m.MatchLabel
		if m.MatchIndex < 0 || m.Status == types.StatusNotFound {
			match = "not found"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %.2f |\n", StatusIcon(m.Status), escapeCell(m.ResumeLabel), escapeCell(match), m.Score)
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
