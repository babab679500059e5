package linkedin

import (
	"fmt"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/types"
)

// ScoringMethod identifies the deterministic scorer in results
const ScoringMethod = "deterministic-weighted-v2"

// Weights is the section weight table used for the overall score
type Weights struct {
	Experience float64 `mapstructure:"experience" json:"experience" validate:"gte=0,lte=1"`
	Education  float64 `mapstructure:"education" json:"education" validate:"gte=0,lte=1"`
	Skills     float64 `mapstructure:"skills" json:"skills" validate:"gte=0,lte=1"`
	Identity   float64 `mapstructure:"identity" json:"identity" validate:"gte=0,lte=1"`
	Summary    float64 `mapstructure:"summary" json:"summary" validate:"gte=0,lte=1"`
	Contact    float64 `mapstructure:"contact" json:"contact" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the default table. It sums to 1.
func DefaultWeights() Weights {
	return Weights{
		Experience: 0.35,
		Education:  0.20,
		Skills:     0.15,
		Identity:   0.10,
		Summary:    0.10,
		Contact:    0.10,
	}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Experience + w.Education + w.Skills + w.Identity + w.Summary + w.Contact
}

// For returns the weight of a section name
func (w Weights) For(section string) float64 {
	switch section {
	case types.SectionExperience:
		return w.Experience
	case types.SectionEducation:
		return w.Education
	case types.SectionSkills:
		return w.Skills
	case types.SectionIdentity:
		return w.Identity
	case types.SectionSummary:
		return w.Summary
	case types.SectionContact:
		return w.Contact
	}
	return 0
}

// Validate rejects negative weights, weights above 1 and a table that sums to zero
func (w Weights) Validate() error {
	for _, section := range sections {
		v := w.For(section)
		if v < 0 || v > 1 {
			return apperr.Config("linkedin.Weights", fmt.Sprintf("weight for %s must be within [0,1], got %g", section, v))
		}
	}
	if w.Sum() <= 0 {
		return apperr.Config("linkedin.Weights", "section weights sum to zero")
	}
	return nil
}

// sections is the report order of scored sections
var sections = []string{
	types.SectionExperience,
	types.SectionEducation,
	types.SectionSkills,
	types.SectionIdentity,
	types.SectionSummary,
	types.SectionContact,
}
