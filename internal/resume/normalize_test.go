package resume

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

const extractionJSON = `{
  "resumeName": "Backend Engineer",
  "firstName": " Ada ",
  "lastName": "Lovelace",
  "email": "Ada@Example.com",
  "phoneNumber": "+1 (555) 010-2000",
  "location": "London, UK",
  "summery": "Engineer building data systems.",
  "profiles": {"linkedin": "", "github": "https://github.com/ada"},
  "links": ["https://ada.dev", "https://ada.dev", " "],
  "workExperiences": [
    {
      "isCurrentPosition": false,
      "employerName": "Acme Inc.",
      "jobTitle": "Senior Engineer",
      "location": "Remote",
      "startedAt": "2020-03",
      "endedAt": "Present",
      "role": "Owned billing.",
      "achievements": [{"text": "Cut latency 40%"}, {"text": ""}],
      "skills": ["golang", "Go", "postgres"]
    },
    {"employerName": "", "jobTitle": ""}
  ],
  "educations": [
    {"institutionName": "MIT", "degreeTypeName": "BSc", "fieldOfStudyName": "CS", "graduationAt": "2015", "description": ""}
  ],
  "certifications": [
    {"title": "CKA", "issuer": "CNCF", "startDate": "2021-06", "expiryDate": null, "link": "https://cncf.io/cka"}
  ],
  "skills": [{"name": "Kubernetes"}, {"name": "k8s"}],
  "skillsCategories": [{"categoryName": "Languages", "skills": [{"name": "Python"}]}],
  "projects": [
    {"title": "ledger", "description": "Double-entry ledger", "achievements": [{"text": "10k TPS"}], "skills": ["Go"]},
    {"title": "  "}
  ]
}`

func TestNormalizeJSON_ExtractionShape(t *testing.T) {
	r, err := NormalizeJSON([]byte(extractionJSON))
	require.NoError(t, err)

	assert.Equal(t, "Ada", r.FirstName)
	assert.Equal(t, "Ada Lovelace", r.Name)
	assert.Equal(t, "Backend Engineer", r.TargetTitle)
	assert.Equal(t, "ada@example.com", r.Email)
	assert.Equal(t, "+1 (555) 010-2000", r.Phone)
	assert.Equal(t, "Engineer building data systems.", r.Summary)
	assert.Equal(t, "https://github.com/ada", r.Profiles.GitHub)
	assert.Equal(t, []string{"https://ada.dev"}, r.Links)

	require.Len(t, r.WorkExperiences, 1)
	exp := r.WorkExperiences[0]
	assert.Equal(t, "Acme Inc.", exp.EmployerName)
	require.NotNil(t, exp.StartedAt)
	assert.Equal(t, "2020-03-01", *exp.StartedAt)
	assert.Nil(t, exp.EndedAt)
	assert.True(t, exp.IsCurrentPosition)
	assert.Equal(t, []string{"Cut latency 40%"}, exp.Achievements)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, exp.Skills)

	require.Len(t, r.Educations, 1)
	require.NotNil(t, r.Educations[0].GraduationAt)
	assert.Equal(t, "2015-01-01", *r.Educations[0].GraduationAt)

	require.Len(t, r.Certifications, 1)
	assert.Equal(t, "https://cncf.io/cka", r.Certifications[0].CredentialURL)
	assert.Nil(t, r.Certifications[0].ExpiryDate)

	assert.Equal(t, []string{"Kubernetes", "Python"}, r.Skills)

	require.Len(t, r.Projects, 1)
	assert.Equal(t, []string{"10k TPS"}, r.Projects[0].Achievements)
}

func TestNormalize_Aliases(t *testing.T) {
	r, err := Normalize(map[string]any{
		"fullName": "Grace Brewster Hopper",
		"phone":    "555-0100",
		"experience": []any{
			map[string]any{"company": "Navy", "title": "Rear Admiral", "startDate": "Jan 1967", "endDate": "1986", "highlights": []any{"COBOL"}},
		},
		"education": []any{
			map[string]any{"school": "Yale", "degree": "PhD", "major": "Mathematics", "graduation": 1934},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace", r.FirstName)
	assert.Equal(t, "Brewster Hopper", r.LastName)
	require.Len(t, r.WorkExperiences, 1)
	exp := r.WorkExperiences[0]
	assert.Equal(t, "Navy", exp.EmployerName)
	assert.Equal(t, "Rear Admiral", exp.JobTitle)
	assert.Equal(t, "1967-01-01", *exp.StartedAt)
	assert.Equal(t, "1986-01-01", *exp.EndedAt)
	assert.False(t, exp.IsCurrentPosition)
	assert.Equal(t, []string{"COBOL"}, exp.Achievements)

	require.Len(t, r.Educations, 1)
	assert.Equal(t, "Yale", r.Educations[0].InstitutionName)
	assert.Equal(t, "Mathematics", r.Educations[0].FieldOfStudyName)
	assert.Equal(t, "1934-01-01", *r.Educations[0].GraduationAt)
}

func TestNormalize_CanonicalKeyWins(t *testing.T) {
	r, err := Normalize(map[string]any{
		"phone":       "111",
		"phoneNumber": "222",
	})
	require.NoError(t, err)
	assert.Equal(t, "111", r.Phone)
}

func TestNormalize_DefaultsToEmpty(t *testing.T) {
	r, err := Normalize(map[string]any{})
	require.NoError(t, err)

	assert.NotNil(t, r.WorkExperiences)
	assert.NotNil(t, r.Educations)
	assert.NotNil(t, r.Certifications)
	assert.NotNil(t, r.Skills)
	assert.NotNil(t, r.Projects)
	assert.NotNil(t, r.Links)
	assert.Empty(t, r.Name)
}

func TestNormalize_TimeValues(t *testing.T) {
	r, err := Normalize(map[string]any{
		"workExperiences": []any{
			map[string]any{"employerName": "Acme", "startedAt": time.Date(2019, 7, 15, 0, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2019-07-15", *r.WorkExperiences[0].StartedAt)
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize(nil)
	assert.Equal(t, apperr.KindEntity, apperr.KindOf(err))

	_, err = NormalizeJSON([]byte(`[1, 2]`))
	assert.Equal(t, apperr.KindEntity, apperr.KindOf(err))

	_, err = Normalize(map[string]any{"workExperiences": "not a list"})
	assert.Equal(t, apperr.KindEntity, apperr.KindOf(err))
}
