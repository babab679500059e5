// Package jobfit scores how well a résumé covers the keywords of a job description.
package jobfit

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// Priority weights
const (
	mustHaveWeight   = 1.0
	niceToHaveWeight = 0.6
	optionalWeight   = 0.3
)

// PriorityWeight returns the weight a keyword contributes to the fit score
func PriorityWeight(p types.KeywordPriority) float64 {
	switch p {
	case types.PriorityMustHave:
		return mustHaveWeight
	case types.PriorityNiceToHave:
		return niceToHaveWeight
	default:
		return optionalWeight
	}
}

// Matcher answers whether a résumé covers a keyword
type Matcher struct {
	skills map[string]struct{}
	words  map[string]struct{}
}

// NewMatcher indexes the skills and text of r
func NewMatcher(r *types.NormalizedResume) *Matcher {
	var skills []string
	if r != nil {
		skills = append(skills, r.Skills...)
		for _, e := range r.WorkExperiences {
			skills = append(skills, e.Skills...)
		}
		for _, p := range r.Projects {
			skills = append(skills, p.Skills...)
		}
	}

	m := &Matcher{skills: resume.SkillSet(skills), words: make(map[string]struct{})}
	for _, w := range words(resume.Text(r)) {
		m.words[w] = struct{}{}
	}
	return m
}

// Matches reports whether the keyword's canonical form is a résumé skill or every word of it
// appears in the résumé text
func (m *Matcher) Matches(keyword string) bool {
	if key := resume.SkillKey(keyword); key != "" {
		if _, ok := m.skills[key]; ok {
			return true
		}
	}
	tokens := words(keyword)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if _, ok := m.words[t]; !ok {
			return false
		}
	}
	return true
}

// Score splits keywords into matched and missing and computes the priority-weighted coverage
func Score(r *types.NormalizedResume, keywords []types.JobKeyword) types.JobFitResult {
	result := types.JobFitResult{
		Matched:  []types.JobKeyword{},
		Missing:  []types.JobKeyword{},
		Keywords: keywords,
	}
	if result.Keywords == nil {
		result.Keywords = []types.JobKeyword{}
	}

	m := NewMatcher(r)
	var matched, total float64
	for _, k := range keywords {
		w := PriorityWeight(k.Priority)
		total += w
		if m.Matches(k.Text) {
			matched += w
			result.Matched = append(result.Matched, k)
		} else {
			result.Missing = append(result.Missing, k)
		}
	}
	if total > 0 {
		result.Score = similarity.RoundScore(matched / total)
	}
	return result
}

// words lower-cases s and splits it on anything but letters, digits, '+' and '#'
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
