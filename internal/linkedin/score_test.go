package linkedin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/types"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func date(s string) *string { return &s }

func sampleResume() *types.NormalizedResume {
	return &types.NormalizedResume{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Name:        "Ada Lovelace",
		TargetTitle: "Staff Software Engineer",
		Email:       "ada@example.com",
		Phone:       "+1 (555) 010-2000",
		Location:    "London, UK",
		Summary:     "Engineer building distributed data systems and payment platforms.",
		WorkExperiences: []types.WorkExperience{
			{
				EmployerName:      "Acme Inc.",
				JobTitle:          "Senior Software Engineer",
				Location:          "London",
				StartedAt:         date("2021-03-01"),
				IsCurrentPosition: true,
				Achievements:      []string{"Built the payment ledger service"},
				Skills:            []string{"Go", "PostgreSQL"},
			},
			{
				EmployerName: "Globex Corporation",
				JobTitle:     "Software Engineer",
				StartedAt:    date("2017-01-01"),
				EndedAt:      date("2021-02-01"),
				Skills:       []string{"Python"},
			},
		},
		Educations: []types.Education{
			{InstitutionName: "University of Cambridge", DegreeTypeName: "BSc", FieldOfStudyName: "Mathematics", GraduationAt: date("2016-06-01")},
		},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
}

func sampleProfile() *types.LinkedInProfile {
	return &types.LinkedInProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Headline:  "Staff Software Engineer at Acme",
		About:     "I build distributed data systems for payment platforms.",
		Location:  "London, United Kingdom",
		Email:     "ada@example.com",
		Experiences: []types.LinkedInExperience{
			{
				Title:       "Senior Software Engineer",
				CompanyName: "Acme",
				Location:    "London",
				StartedAt:   date("2021-03-01"),
				Description: "Built the payment ledger service in Go",
				Skills:      []string{"Go"},
			},
			{
				Title:       "Software Engineer",
				CompanyName: "Globex",
				StartedAt:   date("2017-02-01"),
				EndedAt:     date("2021-02-01"),
			},
		},
		Educations: []types.Education{
			{InstitutionName: "University of Cambridge", DegreeTypeName: "BSc", FieldOfStudyName: "Mathematics", GraduationAt: date("2016-01-01")},
		},
		Skills: []string{"golang", "Kubernetes", "PostgreSQL"},
	}
}

func TestScore_ConsistentProfile(t *testing.T) {
	scores := Score(sampleResume(), sampleProfile(), DefaultWeights(), testNow)

	require.Len(t, scores.Sections, 6)
	assert.Equal(t, types.SectionExperience, scores.Sections[0].Section)
	assert.Equal(t, types.SectionContact, scores.Sections[5].Section)

	require.Len(t, scores.ExperienceMatches, 2)
	for i, m := range scores.ExperienceMatches {
		assert.Equal(t, types.StatusMatched, m.Status, "experience %d", i)
		assert.Equal(t, i, m.MatchIndex)
	}
	assert.Equal(t, "Senior Software Engineer at Acme Inc.", scores.ExperienceMatches[0].ResumeLabel)
	assert.Equal(t, "Senior Software Engineer at Acme", scores.ExperienceMatches[0].MatchLabel)

	require.Len(t, scores.EducationMatches, 1)
	assert.Equal(t, types.StatusMatched, scores.EducationMatches[0].Status)

	for _, s := range scores.Sections {
		assert.GreaterOrEqual(t, s.Score, 0)
		assert.LessOrEqual(t, s.Score, 100)
		assert.InDelta(t, DefaultWeights().For(s.Section), s.Weight, 1e-9)
	}
	assert.Greater(t, scores.Overall, 60)
	assert.LessOrEqual(t, scores.Overall, 100)
}

func TestScore_NearMatchingExperience(t *testing.T) {
	r := &types.NormalizedResume{
		WorkExperiences: []types.WorkExperience{
			{EmployerName: "Acme Corp", JobTitle: "Software Engineer", StartedAt: date("2020-01-01"), EndedAt: date("2021-12-01")},
		},
	}
	profile := &types.LinkedInProfile{
		Experiences: []types.LinkedInExperience{
			{CompanyName: "Acme Corporation", Title: "Software Engineer II", StartedAt: date("2020-02-01"), EndedAt: date("2021-12-01")},
		},
	}

	scores := Score(r, profile, DefaultWeights(), testNow)

	require.Len(t, scores.ExperienceMatches, 1)
	assert.Equal(t, types.StatusMatched, scores.ExperienceMatches[0].Status)
	assert.Equal(t, 0, scores.ExperienceMatches[0].MatchIndex)
	assert.Equal(t, types.SectionExperience, scores.Sections[0].Section)
	assert.Greater(t, scores.Sections[0].Score, 60)
}

func TestScore_OverallIsWeightedMean(t *testing.T) {
	scores := Score(sampleResume(), sampleProfile(), DefaultWeights(), testNow)

	sum, total := 0.0, 0.0
	for _, s := range scores.Sections {
		sum += float64(s.Score) * s.Weight
		total += s.Weight
	}
	assert.InDelta(t, sum/total, float64(scores.Overall), 0.5)
}

func TestScore_UnrelatedProfile(t *testing.T) {
	profile := &types.LinkedInProfile{
		FirstName: "Bob",
		LastName:  "Builder",
		Experiences: []types.LinkedInExperience{
			{Title: "Chef", CompanyName: "Bistro Rouge", StartedAt: date("2005-01-01"), EndedAt: date("2008-01-01")},
		},
	}
	scores := Score(sampleResume(), profile, DefaultWeights(), testNow)

	for _, m := range scores.ExperienceMatches {
		assert.NotEqual(t, types.StatusMatched, m.Status)
	}
	require.Len(t, scores.EducationMatches, 1)
	assert.Equal(t, types.StatusNotFound, scores.EducationMatches[0].Status)
	assert.Equal(t, -1, scores.EducationMatches[0].MatchIndex)
	assert.Less(t, scores.Overall, 40)
}

func TestScore_BestMatchIsNotExclusive(t *testing.T) {
	r := sampleResume()
	r.WorkExperiences = append(r.WorkExperiences, r.WorkExperiences[0])

	profile := sampleProfile()
	profile.Experiences = profile.Experiences[:1]

	scores := Score(r, profile, DefaultWeights(), testNow)
	require.Len(t, scores.ExperienceMatches, 3)
	assert.Equal(t, 0, scores.ExperienceMatches[0].MatchIndex)
	assert.Equal(t, 0, scores.ExperienceMatches[2].MatchIndex)
	assert.Equal(t, scores.ExperienceMatches[0].Score, scores.ExperienceMatches[2].Score)
}

func TestScore_EmptySections(t *testing.T) {
	scores := Score(&types.NormalizedResume{}, &types.LinkedInProfile{}, DefaultWeights(), testNow)

	for _, s := range scores.Sections {
		assert.Equal(t, 30, s.Score, s.Section)
	}
	assert.Equal(t, 30, scores.Overall)
	assert.Empty(t, scores.ExperienceMatches)
	assert.Empty(t, scores.EducationMatches)
}

func TestScore_CustomWeights(t *testing.T) {
	w := Weights{Identity: 1}
	scores := Score(sampleResume(), sampleProfile(), w, testNow)

	identity := scores.Sections[3]
	require.Equal(t, types.SectionIdentity, identity.Section)
	assert.Equal(t, identity.Score, scores.Overall)
}

func TestEntryStatus(t *testing.T) {
	assert.Equal(t, types.StatusMatched, EntryStatus(0.55))
	assert.Equal(t, types.StatusPartial, EntryStatus(0.549))
	assert.Equal(t, types.StatusPartial, EntryStatus(0.35))
	assert.Equal(t, types.StatusNotFound, EntryStatus(0.349))
}

func TestEndCloseness(t *testing.T) {
	current := types.WorkExperience{IsCurrentPosition: true}
	ended := types.WorkExperience{EndedAt: date("2020-01-01")}

	assert.Equal(t, 1.0, endCloseness(current, types.LinkedInExperience{StartedAt: date("2020-01-01")}))
	assert.Equal(t, 0.1, endCloseness(current, types.LinkedInExperience{EndedAt: date("2020-01-01")}))
	assert.Equal(t, 0.1, endCloseness(ended, types.LinkedInExperience{StartedAt: date("2019-01-01")}))
	assert.Equal(t, 1.0, endCloseness(ended, types.LinkedInExperience{EndedAt: date("2020-01-01")}))
	assert.Equal(t, 0.3, endCloseness(ended, types.LinkedInExperience{}))
}

func TestRecencyWeight(t *testing.T) {
	assert.Equal(t, 1.0, RecencyWeight(types.WorkExperience{IsCurrentPosition: true}, testNow))
	assert.Equal(t, 0.5, RecencyWeight(types.WorkExperience{}, testNow))
	assert.InDelta(t, 0.5, RecencyWeight(types.WorkExperience{EndedAt: date("2022-06-01")}, testNow), 1e-9)
	assert.InDelta(t, 1.0, RecencyWeight(types.WorkExperience{EndedAt: date("2025-06-01")}, testNow), 1e-9)
	assert.Equal(t, 0.1, RecencyWeight(types.WorkExperience{EndedAt: date("1990-01-01")}, testNow))
}

func TestEmailScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact", "ada@example.com", "ada@example.com", 1.0},
		{"case-insensitive", "Ada@Example.com", "ada@example.com", 1.0},
		{"same domain", "ada@example.com", "zed@example.com", 0.5},
		{"similar local other domain", "ada.lovelace@example.com", "ada.lovelac@mail.com", 0.4},
		{"unrelated", "ada@example.com", "zed@mail.com", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EmailScore(tt.a, tt.b), 1e-9)
		})
	}

	assert.Greater(t, EmailScore("ada.l@example.com", "ada@example.com"), 0.5)
}

func TestPhoneScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"formatting differs", "+1 (555) 010-2000", "555.010.2000", 1.0},
		{"country code", "+44 20 7946 0958", "020 7946 0958", 1.0},
		{"short equal", "12345", "12-345", 1.0},
		{"last four", "555-010-2000", "555-999-2000", 0.8},
		{"last three", "555-010-2000", "555-999-9000", 0.5},
		{"different", "555-010-2000", "555-010-2111", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhoneScore(tt.a, tt.b))
		})
	}
}

func TestScoreContact_MissingComponentsExcluded(t *testing.T) {
	r := &types.NormalizedResume{Email: "ada@example.com"}
	p := &types.LinkedInProfile{Email: "ada@example.com", Phone: "555-0100"}

	s := scoreContact(r, p)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, 0.5, s.Coverage)

	none := scoreContact(&types.NormalizedResume{}, p)
	assert.Equal(t, 30, none.Score)
	assert.Equal(t, 0.0, none.Coverage)
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9)

	err := Weights{}.Validate()
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))

	err = Weights{Experience: 1.5}.Validate()
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))

	err = Weights{Experience: -0.1, Skills: 1}.Validate()
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
}
