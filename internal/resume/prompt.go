package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-verifier/internal/types"
)

// PromptJSON renders r as indented JSON for inclusion in a prompt
func PromptJSON(r *types.NormalizedResume) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Text renders the searchable text of a résumé: titles, roles, achievements, projects, skills and summary.
// Keyword matching runs against it.
func Text(r *types.NormalizedResume) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	line := func(parts ...string) {
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				b.WriteString(p)
				b.WriteByte('\n')
			}
		}
	}

	line(r.FullName(), r.TargetTitle, r.Summary)
	for _, e := range r.WorkExperiences {
		switch {
		case e.JobTitle != "" && e.EmployerName != "":
			line(fmt.Sprintf("%s at %s", e.JobTitle, e.EmployerName))
		default:
			line(e.JobTitle, e.EmployerName)
		}
		line(e.Role)
		line(e.Achievements...)
		line(strings.Join(e.Skills, ", "))
	}
	for _, e := range r.Educations {
		line(strings.TrimSpace(e.DegreeTypeName+" "+e.FieldOfStudyName), e.InstitutionName)
	}
	for _, c := range r.Certifications {
		line(c.Title, c.Issuer)
	}
	for _, p := range r.Projects {
		line(p.Title, p.Description)
		line(p.Achievements...)
		line(strings.Join(p.Skills, ", "))
	}
	line(strings.Join(r.Skills, ", "))
	return strings.TrimSpace(b.String())
}
