package linkedin

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// Entry thresholds on a best-match score
const (
	MatchedThreshold = 0.55
	PartialThreshold = 0.35
)

// Experience composite weights
const (
	expCompanyWeight      = 0.30
	expTitleWeight        = 0.28
	expLocationWeight     = 0.04
	expStartWeight        = 0.08
	expEndWeight          = 0.08
	expDurationWeight     = 0.08
	expSkillsWeight       = 0.07
	expAchievementsWeight = 0.07
)

// Education composite weights
const (
	eduInstitutionWeight = 0.45
	eduDegreeWeight      = 0.25
	eduFieldWeight       = 0.15
	eduGraduationWeight  = 0.15
)

const (
	// coverageBlend is the share of a section value taken by the coverage fraction
	coverageBlend = 0.3
	// recencyHalfLifeYears halves an experience's weight every three years since it ended
	recencyHalfLifeYears = 3.0
	minRecencyWeight     = 0.1
	unknownRecencyWeight = 0.5
	// mismatchedEndScore is used when exactly one side marks the role as current
	mismatchedEndScore = 0.1
)

// Scores is the deterministic part of a LinkedIn verification
type Scores struct {
	Sections          []types.SectionScore
	ExperienceMatches []types.EntryMatch
	EducationMatches  []types.EntryMatch
	Overall           int
}

// Score compares r against p and returns section scores with the weighted overall score.
// Each résumé entry keeps its best LinkedIn match; several entries may share one match.
func Score(r *types.NormalizedResume, p *types.LinkedInProfile, w Weights, now time.Time) Scores {
	expSection, expMatches := scoreExperience(r, p, now)
	eduSection, eduMatches := scoreEducation(r, p)

	byName := map[string]types.SectionScore{
		types.SectionExperience: expSection,
		types.SectionEducation:  eduSection,
		types.SectionSkills:     scoreSkills(r, p),
		types.SectionIdentity:   scoreIdentity(r, p),
		types.SectionSummary:    scoreSummary(r, p),
		types.SectionContact:    scoreContact(r, p),
	}

	out := Scores{ExperienceMatches: expMatches, EducationMatches: eduMatches}
	values := make([]float64, 0, len(sections))
	weights := make([]float64, 0, len(sections))
	for _, name := range sections {
		s := byName[name]
		s.Weight = w.For(name)
		out.Sections = append(out.Sections, s)
		values = append(values, float64(s.Score))
		weights = append(weights, s.Weight)
	}
	overall := similarity.WeightedAverage(values, weights)
	out.Overall = int(math.Round(math.Max(0, math.Min(100, overall))))
	return out
}

// EntryStatus maps a best-match score to an entry status
func EntryStatus(score float64) types.MatchStatus {
	switch {
	case score >= MatchedThreshold:
		return types.StatusMatched
	case score >= PartialThreshold:
		return types.StatusPartial
	default:
		return types.StatusNotFound
	}
}

// ExperienceSimilarity is the composite similarity of a résumé position and a LinkedIn position
func ExperienceSimilarity(re types.WorkExperience, le types.LinkedInExperience, now time.Time) float64 {
	liDetail := strings.TrimSpace(le.Description + " " + strings.Join(le.Achievements, " "))

	return similarity.Blend(
		similarity.Component{Name: "company", Weight: expCompanyWeight,
			Value: similarity.TextScore(re.EmployerName, le.CompanyName, similarity.CompanySimilarity)},
		similarity.Component{Name: "title", Weight: expTitleWeight,
			Value: similarity.TextScore(re.JobTitle, le.Title, similarity.Jaccard)},
		similarity.Component{Name: "location", Weight: expLocationWeight,
			Value: similarity.TextScore(re.Location, le.Location, similarity.Jaccard)},
		similarity.Component{Name: "start", Weight: expStartWeight,
			Value: similarity.SmoothDateCloseness(re.StartedAt, le.StartedAt)},
		similarity.Component{Name: "end", Weight: expEndWeight,
			Value: endCloseness(re, le)},
		similarity.Component{Name: "duration", Weight: expDurationWeight,
			Value: similarity.DurationCloseness(re.StartedAt, re.EndedAt, le.StartedAt, le.EndedAt, now)},
		similarity.Component{Name: "skills", Weight: expSkillsWeight,
			Value: skillOverlap(re.Skills, le.Skills)},
		similarity.Component{Name: "achievements", Weight: expAchievementsWeight,
			Value: similarity.TextScore(strings.Join(re.Achievements, " "), liDetail, similarity.OverlapCoefficient)},
	)
}

// endCloseness treats a LinkedIn role with a start date and no end date as current
func endCloseness(re types.WorkExperience, le types.LinkedInExperience) float64 {
	liCurrent := le.EndedAt == nil && le.StartedAt != nil
	switch {
	case re.IsCurrentPosition && liCurrent:
		return 1.0
	case re.IsCurrentPosition && le.EndedAt != nil:
		return mismatchedEndScore
	case !re.IsCurrentPosition && re.EndedAt != nil && liCurrent:
		return mismatchedEndScore
	default:
		return similarity.SmoothDateCloseness(re.EndedAt, le.EndedAt)
	}
}

func skillOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return similarity.NeutralTextScore
	}
	return similarity.JaccardSets(resume.SkillSet(a), resume.SkillSet(b))
}

// RecencyWeight favors current and recently ended positions
func RecencyWeight(re types.WorkExperience, now time.Time) float64 {
	if re.IsCurrentPosition {
		return 1.0
	}
	years, ok := similarity.YearsSince(re.EndedAt, now)
	if !ok {
		return unknownRecencyWeight
	}
	return math.Max(minRecencyWeight, math.Pow(0.5, years/recencyHalfLifeYears))
}

func scoreExperience(r *types.NormalizedResume, p *types.LinkedInProfile, now time.Time) (types.SectionScore, []types.EntryMatch) {
	section := types.SectionScore{Section: types.SectionExperience}
	matches := make([]types.EntryMatch, 0, len(r.WorkExperiences))
	if len(r.WorkExperiences) == 0 {
		section.Score = similarity.RoundScore(similarity.NeutralTextScore)
		section.Rationale = "No résumé experience to verify"
		return section, matches
	}

	values := make([]float64, len(r.WorkExperiences))
	weights := make([]float64, len(r.WorkExperiences))
	covered := 0
	for i, re := range r.WorkExperiences {
		m := types.EntryMatch{ResumeIndex: i, ResumeLabel: positionLabel(re.JobTitle, re.EmployerName), MatchIndex: -1}
		for j, le := range p.Experiences {
			if s := ExperienceSimilarity(re, le, now); s > m.Score || m.MatchIndex < 0 {
				m.Score, m.MatchIndex = s, j
				m.MatchLabel = positionLabel(le.Title, le.CompanyName)
			}
		}
		m.Score = roundTo(m.Score, 3)
		m.Status = EntryStatus(m.Score)
		if m.Score >= MatchedThreshold {
			covered++
		}
		values[i] = m.Score
		weights[i] = RecencyWeight(re, now)
		matches = append(matches, m)
	}

	coverage := float64(covered) / float64(len(r.WorkExperiences))
	value := (1-coverageBlend)*similarity.WeightedAverage(values, weights) + coverageBlend*coverage
	section.Score = similarity.RoundScore(value)
	section.Coverage = roundTo(coverage, 3)
	section.Rationale = fmt.Sprintf("%d of %d experiences matched LinkedIn (recency-weighted best match)", covered, len(r.WorkExperiences))
	return section, matches
}

// EducationSimilarity is the composite similarity of two education entries
func EducationSimilarity(a, b types.Education) float64 {
	return similarity.Blend(
		similarity.Component{Name: "institution", Weight: eduInstitutionWeight,
			Value: similarity.TextScore(a.InstitutionName, b.InstitutionName, nameSimilarity)},
		similarity.Component{Name: "degree", Weight: eduDegreeWeight,
			Value: similarity.TextScore(a.DegreeTypeName, b.DegreeTypeName, similarity.Jaccard)},
		similarity.Component{Name: "field", Weight: eduFieldWeight,
			Value: similarity.TextScore(a.FieldOfStudyName, b.FieldOfStudyName, similarity.Jaccard)},
		similarity.Component{Name: "graduation", Weight: eduGraduationWeight,
			Value: similarity.DateCloseness(a.GraduationAt, b.GraduationAt)},
	)
}

func scoreEducation(r *types.NormalizedResume, p *types.LinkedInProfile) (types.SectionScore, []types.EntryMatch) {
	section := types.SectionScore{Section: types.SectionEducation}
	matches := make([]types.EntryMatch, 0, len(r.Educations))
	if len(r.Educations) == 0 {
		section.Score = similarity.RoundScore(similarity.NeutralTextScore)
		section.Rationale = "No résumé education to verify"
		return section, matches
	}

	sum := 0.0
	covered := 0
	for i, re := range r.Educations {
		m := types.EntryMatch{ResumeIndex: i, ResumeLabel: educationLabel(re), MatchIndex: -1}
		for j, le := range p.Educations {
			if s := EducationSimilarity(re, le); s > m.Score || m.MatchIndex < 0 {
				m.Score, m.MatchIndex = s, j
				m.MatchLabel = educationLabel(le)
			}
		}
		m.Score = roundTo(m.Score, 3)
		m.Status = EntryStatus(m.Score)
		if m.Score >= MatchedThreshold {
			covered++
		}
		sum += m.Score
		matches = append(matches, m)
	}

	n := float64(len(r.Educations))
	coverage := float64(covered) / n
	section.Score = similarity.RoundScore((1-coverageBlend)*(sum/n) + coverageBlend*coverage)
	section.Coverage = roundTo(coverage, 3)
	section.Rationale = fmt.Sprintf("%d of %d education entries matched LinkedIn", covered, len(r.Educations))
	return section, matches
}

func scoreIdentity(r *types.NormalizedResume, p *types.LinkedInProfile) types.SectionScore {
	resumeName, profileName := r.FullName(), p.FullName()
	name := similarity.TextScore(resumeName, profileName, nameSimilarity)
	location := similarity.TextScore(r.Location, p.Location, similarity.Jaccard)

	comparable := countPresent(resumeName, profileName) + countPresent(r.Location, p.Location)
	return types.SectionScore{
		Section:   types.SectionIdentity,
		Score:     similarity.RoundScore(0.85*name + 0.15*location),
		Coverage:  float64(comparable) / 2,
		Rationale: fmt.Sprintf("Name similarity %.2f, location similarity %.2f", name, location),
	}
}

func scoreContact(r *types.NormalizedResume, p *types.LinkedInProfile) types.SectionScore {
	var components []similarity.Component
	var notes []string
	if countPresent(r.Email, p.Email) == 1 {
		s := EmailScore(r.Email, p.Email)
		components = append(components, similarity.Component{Name: "email", Value: s, Weight: 0.6})
		notes = append(notes, fmt.Sprintf("email %.2f", s))
	}
	if countPresent(digits(r.Phone), digits(p.Phone)) == 1 {
		s := PhoneScore(r.Phone, p.Phone)
		components = append(components, similarity.Component{Name: "phone", Value: s, Weight: 0.4})
		notes = append(notes, fmt.Sprintf("phone %.2f", s))
	}

	section := types.SectionScore{
		Section:  types.SectionContact,
		Coverage: float64(len(components)) / 2,
	}
	if len(components) == 0 {
		section.Score = similarity.RoundScore(similarity.NeutralTextScore)
		section.Rationale = "No contact details comparable"
		return section
	}
	section.Score = similarity.RoundScore(similarity.Blend(components...))
	section.Rationale = "Compared " + strings.Join(notes, ", ")
	return section
}

func scoreSkills(r *types.NormalizedResume, p *types.LinkedInProfile) types.SectionScore {
	resumeSkills := resume.SkillSet(collectResumeSkills(r))
	profileSkills := resume.SkillSet(collectProfileSkills(p))

	section := types.SectionScore{Section: types.SectionSkills}
	if len(resumeSkills) == 0 || len(profileSkills) == 0 {
		section.Score = similarity.RoundScore(similarity.NeutralTextScore)
		section.Rationale = "Skills missing on one side"
		return section
	}

	shared := 0
	for s := range resumeSkills {
		if _, ok := profileSkills[s]; ok {
			shared++
		}
	}
	resumeCoverage := float64(shared) / float64(len(resumeSkills))
	section.Score = similarity.RoundScore(0.5*similarity.JaccardSets(resumeSkills, profileSkills) + 0.5*resumeCoverage)
	section.Coverage = roundTo(resumeCoverage, 3)
	section.Rationale = fmt.Sprintf("%d of %d résumé skills listed on LinkedIn", shared, len(resumeSkills))
	return section
}

func scoreSummary(r *types.NormalizedResume, p *types.LinkedInProfile) types.SectionScore {
	about := similarity.TextScore(r.Summary, p.About, similarity.OverlapCoefficient)
	headline := similarity.TextScore(p.Headline, r.TargetTitle, similarity.Jaccard)
	comparable := countPresent(r.Summary, p.About) + countPresent(p.Headline, r.TargetTitle)

	return types.SectionScore{
		Section:   types.SectionSummary,
		Score:     similarity.RoundScore(0.6*about + 0.4*headline),
		Coverage:  float64(comparable) / 2,
		Rationale: fmt.Sprintf("Summary vs about %.2f, headline vs target title %.2f", about, headline),
	}
}

func collectResumeSkills(r *types.NormalizedResume) []string {
	out := append([]string(nil), r.Skills...)
	for _, e := range r.WorkExperiences {
		out = append(out, e.Skills...)
	}
	return out
}

func collectProfileSkills(p *types.LinkedInProfile) []string {
	out := append([]string(nil), p.Skills...)
	for _, e := range p.Experiences {
		out = append(out, e.Skills...)
	}
	return out
}

// nameSimilarity tolerates both reordered tokens and small spelling differences
func nameSimilarity(a, b string) float64 {
	return math.Max(similarity.Jaccard(a, b), similarity.FuzzyRatio(a, b))
}

// countPresent returns 1 when both values are non-blank
func countPresent(a, b string) int {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	return 1
}

func positionLabel(title, company string) string {
	switch {
	case title != "" && company != "":
		return title + " at " + company
	case title != "":
		return title
	default:
		return company
	}
}

func educationLabel(e types.Education) string {
	degree := strings.TrimSpace(strings.Join(strings.Fields(e.DegreeTypeName+" "+e.FieldOfStudyName), " "))
	switch {
	case degree != "" && e.InstitutionName != "":
		return degree + ", " + e.InstitutionName
	case degree != "":
		return degree
	default:
		return e.InstitutionName
	}
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
