// Package resume coalesces résumé records into the shape the verification pipelines consume.
package resume

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// field aliases accepted per record kind, alias -> canonical
var (
	resumeAliases = map[string]string{
		"phoneNumber":   "phone",
		"summery":       "summary",
		"resumeName":    "targetTitle",
		"title":         "targetTitle",
		"fullName":      "name",
		"experiences":   "workExperiences",
		"experience":    "workExperiences",
		"education":     "educations",
		"githubUrl":     "github",
		"linkedinUrl":   "linkedin",
		"websites":      "links",
		"certificates":  "certifications",
		"skillCategory": "skillsCategories",
	}
	experienceAliases = map[string]string{
		"company":     "employerName",
		"companyName": "employerName",
		"employer":    "employerName",
		"title":       "jobTitle",
		"position":    "jobTitle",
		"startDate":   "startedAt",
		"endDate":     "endedAt",
		"current":     "isCurrentPosition",
		"isCurrent":   "isCurrentPosition",
		"description": "role",
		"highlights":  "achievements",
	}
	educationAliases = map[string]string{
		"institution":  "institutionName",
		"school":       "institutionName",
		"degree":       "degreeTypeName",
		"degreeType":   "degreeTypeName",
		"fieldOfStudy": "fieldOfStudyName",
		"field":        "fieldOfStudyName",
		"major":        "fieldOfStudyName",
		"endDate":      "graduationAt",
		"graduation":   "graduationAt",
	}
	certificationAliases = map[string]string{
		"name":          "title",
		"authority":     "issuer",
		"issueDate":     "startDate",
		"link":          "credentialUrl",
		"url":           "credentialUrl",
		"credentialURL": "credentialUrl",
	}
	projectAliases = map[string]string{
		"name":         "title",
		"technologies": "skills",
		"highlights":   "achievements",
	}
)

type rawResume struct {
	FirstName        string             `mapstructure:"firstName"`
	LastName         string             `mapstructure:"lastName"`
	Name             string             `mapstructure:"name"`
	TargetTitle      string             `mapstructure:"targetTitle"`
	Email            string             `mapstructure:"email"`
	Phone            string             `mapstructure:"phone"`
	Location         string             `mapstructure:"location"`
	Summary          string             `mapstructure:"summary"`
	WorkExperiences  []rawExperience    `mapstructure:"workExperiences"`
	Educations       []rawEducation     `mapstructure:"educations"`
	Certifications   []rawCertification `mapstructure:"certifications"`
	Skills           []string           `mapstructure:"skills"`
	SkillsCategories []struct {
		Skills []string `mapstructure:"skills"`
	} `mapstructure:"skillsCategories"`
	Projects []rawProject `mapstructure:"projects"`
	Profiles struct {
		LinkedIn string `mapstructure:"linkedin"`
		GitHub   string `mapstructure:"github"`
	} `mapstructure:"profiles"`
	GitHub   string   `mapstructure:"github"`
	LinkedIn string   `mapstructure:"linkedin"`
	Links    []string `mapstructure:"links"`
}

type rawExperience struct {
	EmployerName      string   `mapstructure:"employerName"`
	JobTitle          string   `mapstructure:"jobTitle"`
	Location          string   `mapstructure:"location"`
	StartedAt         string   `mapstructure:"startedAt"`
	EndedAt           string   `mapstructure:"endedAt"`
	IsCurrentPosition bool     `mapstructure:"isCurrentPosition"`
	Role              string   `mapstructure:"role"`
	Achievements      []string `mapstructure:"achievements"`
	Skills            []string `mapstructure:"skills"`
}

type rawEducation struct {
	InstitutionName  string `mapstructure:"institutionName"`
	DegreeTypeName   string `mapstructure:"degreeTypeName"`
	FieldOfStudyName string `mapstructure:"fieldOfStudyName"`
	GraduationAt     string `mapstructure:"graduationAt"`
	Description      string `mapstructure:"description"`
}

type rawCertification struct {
	Title         string `mapstructure:"title"`
	Issuer        string `mapstructure:"issuer"`
	StartDate     string `mapstructure:"startDate"`
	ExpiryDate    string `mapstructure:"expiryDate"`
	CredentialURL string `mapstructure:"credentialUrl"`
}

type rawProject struct {
	Title        string   `mapstructure:"title"`
	Description  string   `mapstructure:"description"`
	Achievements []string `mapstructure:"achievements"`
	Skills       []string `mapstructure:"skills"`
}

// NormalizeJSON decodes a résumé document and normalizes it
func NormalizeJSON(data []byte) (*types.NormalizedResume, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.Wrap(apperr.KindEntity, "resume.NormalizeJSON", "résumé is not a JSON object", err)
	}
	return Normalize(raw)
}

// Normalize coalesces a résumé-shaped map into a NormalizedResume.
// Known aliases are accepted, optional fields default to empty, dates become YYYY-MM-DD or nil
// and skills are canonicalized and deduplicated.
func Normalize(raw map[string]any) (*types.NormalizedResume, error) {
	if raw == nil {
		return nil, apperr.New(apperr.KindEntity, "resume.Normalize", "résumé is empty")
	}

	canonical := canonicalize(raw)

	var r rawResume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(textFromObjectHook, timeToStringHook),
		WeaklyTypedInput: true,
		Result:           &r,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "resume.Normalize", "failed to build decoder", err)
	}
	if err := decoder.Decode(canonical); err != nil {
		return nil, apperr.Wrap(apperr.KindEntity, "resume.Normalize", "résumé has an unexpected shape", err)
	}

	return r.normalize(), nil
}

func (r *rawResume) normalize() *types.NormalizedResume {
	out := &types.NormalizedResume{
		FirstName:       clean(r.FirstName),
		LastName:        clean(r.LastName),
		Name:            clean(r.Name),
		TargetTitle:     clean(r.TargetTitle),
		Email:           strings.ToLower(clean(r.Email)),
		Phone:           clean(r.Phone),
		Location:        clean(r.Location),
		Summary:         strings.TrimSpace(r.Summary),
		WorkExperiences: make([]types.WorkExperience, 0, len(r.WorkExperiences)),
		Educations:      make([]types.Education, 0, len(r.Educations)),
		Certifications:  make([]types.Certification, 0, len(r.Certifications)),
		Projects:        make([]types.Project, 0, len(r.Projects)),
		Profiles: types.Profiles{
			LinkedIn: firstNonEmpty(r.Profiles.LinkedIn, r.LinkedIn),
			GitHub:   firstNonEmpty(r.Profiles.GitHub, r.GitHub),
		},
		Links: cleanList(r.Links),
	}

	if out.Name == "" {
		out.Name = out.FullName()
	} else if out.FirstName == "" && out.LastName == "" {
		out.FirstName, out.LastName = splitName(out.Name)
	}

	for _, e := range r.WorkExperiences {
		exp := types.WorkExperience{
			EmployerName:      clean(e.EmployerName),
			JobTitle:          clean(e.JobTitle),
			Location:          clean(e.Location),
			StartedAt:         similarity.NormalizeDate(e.StartedAt),
			EndedAt:           similarity.NormalizeDate(e.EndedAt),
			IsCurrentPosition: e.IsCurrentPosition || isOpenEnded(e.EndedAt),
			Role:              strings.TrimSpace(e.Role),
			Achievements:      cleanList(e.Achievements),
			Skills:            NormalizeSkills(e.Skills),
		}
		if exp.EmployerName == "" && exp.JobTitle == "" {
			continue
		}
		if exp.IsCurrentPosition {
			exp.EndedAt = nil
		}
		out.WorkExperiences = append(out.WorkExperiences, exp)
	}

	for _, e := range r.Educations {
		edu := types.Education{
			InstitutionName:  clean(e.InstitutionName),
			DegreeTypeName:   clean(e.DegreeTypeName),
			FieldOfStudyName: clean(e.FieldOfStudyName),
			GraduationAt:     similarity.NormalizeDate(e.GraduationAt),
			Description:      strings.TrimSpace(e.Description),
		}
		if edu.InstitutionName == "" && edu.DegreeTypeName == "" {
			continue
		}
		out.Educations = append(out.Educations, edu)
	}

	for _, c := range r.Certifications {
		if clean(c.Title) == "" {
			continue
		}
		out.Certifications = append(out.Certifications, types.Certification{
			Title:         clean(c.Title),
			Issuer:        clean(c.Issuer),
			StartDate:     similarity.NormalizeDate(c.StartDate),
			ExpiryDate:    similarity.NormalizeDate(c.ExpiryDate),
			CredentialURL: strings.TrimSpace(c.CredentialURL),
		})
	}

	skills := append([]string(nil), r.Skills...)
	for _, cat := range r.SkillsCategories {
		skills = append(skills, cat.Skills...)
	}
	out.Skills = NormalizeSkills(skills)

	for _, p := range r.Projects {
		if clean(p.Title) == "" {
			continue
		}
		out.Projects = append(out.Projects, types.Project{
			Title:        clean(p.Title),
			Description:  strings.TrimSpace(p.Description),
			Achievements: cleanList(p.Achievements),
			Skills:       NormalizeSkills(p.Skills),
		})
	}

	return out
}

// canonicalize renames aliased keys at every record level. A canonical key that is already present wins.
func canonicalize(raw map[string]any) map[string]any {
	out := renameKeys(raw, resumeAliases)
	for key, aliases := range map[string]map[string]string{
		"workExperiences": experienceAliases,
		"educations":      educationAliases,
		"certifications":  certificationAliases,
		"projects":        projectAliases,
	} {
		list, ok := out[key].([]any)
		if !ok {
			continue
		}
		renamed := make([]any, len(list))
		for i, item := range list {
			if m, ok := item.(map[string]any); ok {
				renamed[i] = renameKeys(m, aliases)
			} else {
				renamed[i] = item
			}
		}
		out[key] = renamed
	}
	return out
}

func renameKeys(m map[string]any, aliases map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for alias, canonical := range aliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		delete(out, alias)
		if existing, has := out[canonical]; !has || existing == nil {
			out[canonical] = v
		}
	}
	return out
}

// textFromObjectHook decodes {text: ...} and {name: ...} objects into plain strings
func textFromObjectHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	for _, key := range []string{"text", "name", "value", "title"} {
		if s, ok := m[key].(string); ok {
			return s, nil
		}
	}
	return "", nil
}

func timeToStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	t, ok := data.(time.Time)
	if !ok {
		return data, fmt.Errorf("expected time.Time, got %T", data)
	}
	return t.Format("2006-01-02"), nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func isOpenEnded(date string) bool {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "present", "current", "now", "today", "ongoing":
		return true
	}
	return false
}
