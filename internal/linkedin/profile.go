package linkedin

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// NormalizeProfile trims strings, normalizes dates and replaces nil slices with empty ones
func NormalizeProfile(p types.LinkedInProfile) types.LinkedInProfile {
	out := types.LinkedInProfile{
		FirstName:       strings.TrimSpace(p.FirstName),
		LastName:        strings.TrimSpace(p.LastName),
		Headline:        strings.TrimSpace(p.Headline),
		About:           strings.TrimSpace(p.About),
		Location:        strings.TrimSpace(p.Location),
		Email:           strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:           strings.TrimSpace(p.Phone),
		Websites:        trimAll(p.Websites),
		Experiences:     make([]types.LinkedInExperience, 0, len(p.Experiences)),
		Educations:      make([]types.Education, 0, len(p.Educations)),
		Certifications:  make([]types.Certification, 0, len(p.Certifications)),
		Skills:          resume.NormalizeSkills(p.Skills),
		Languages:       trimAll(p.Languages),
		Accomplishments: trimAll(p.Accomplishments),
	}

	for _, e := range p.Experiences {
		if strings.TrimSpace(e.Title) == "" && strings.TrimSpace(e.CompanyName) == "" {
			continue
		}
		out.Experiences = append(out.Experiences, types.LinkedInExperience{
			Title:        strings.TrimSpace(e.Title),
			CompanyName:  strings.TrimSpace(e.CompanyName),
			Location:     strings.TrimSpace(e.Location),
			StartedAt:    similarity.NormalizeDatePtr(e.StartedAt),
			EndedAt:      similarity.NormalizeDatePtr(e.EndedAt),
			Description:  strings.TrimSpace(e.Description),
			Achievements: trimAll(e.Achievements),
			Skills:       resume.NormalizeSkills(e.Skills),
		})
	}
	for _, e := range p.Educations {
		if strings.TrimSpace(e.InstitutionName) == "" && strings.TrimSpace(e.DegreeTypeName) == "" {
			continue
		}
		out.Educations = append(out.Educations, types.Education{
			InstitutionName:  strings.TrimSpace(e.InstitutionName),
			DegreeTypeName:   strings.TrimSpace(e.DegreeTypeName),
			FieldOfStudyName: strings.TrimSpace(e.FieldOfStudyName),
			GraduationAt:     similarity.NormalizeDatePtr(e.GraduationAt),
			Description:      strings.TrimSpace(e.Description),
		})
	}
	for _, c := range p.Certifications {
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		out.Certifications = append(out.Certifications, types.Certification{
			Title:         strings.TrimSpace(c.Title),
			Issuer:        strings.TrimSpace(c.Issuer),
			StartDate:     similarity.NormalizeDatePtr(c.StartDate),
			ExpiryDate:    similarity.NormalizeDatePtr(c.ExpiryDate),
			CredentialURL: strings.TrimSpace(c.CredentialURL),
		})
	}
	return out
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func profileJSON(p *types.LinkedInProfile) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
