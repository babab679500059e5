package types

// Section names used in SectionScore
const (
	SectionIdentity   = "identity"
	SectionContact    = "contact"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionSummary    = "summary"
)

// SectionScore is one scored dimension of a verification
type SectionScore struct {
	Section   string  `json:"section" validate:"required"`
	Score     int     `json:"score" validate:"gte=0,lte=100"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=1"`
	Rationale string  `json:"rationale"`
	Coverage  float64 `json:"coverage" validate:"gte=0,lte=1"`
}

// EntryMatch records the best LinkedIn match found for one résumé entry
type EntryMatch struct {
	ResumeIndex int         `json:"resumeIndex"`
	ResumeLabel string      `json:"resumeLabel"`
	MatchLabel  string      `json:"matchLabel"`
	MatchIndex  int         `json:"matchIndex"`
	Score       float64     `json:"score" validate:"gte=0,lte=1"`
	Status      MatchStatus `json:"status"`
}

// VerificationResult is the output of the LinkedIn verification pipeline
type VerificationResult struct {
	RunID             string           `json:"runId"`
	LinkedInProfile   *LinkedInProfile `json:"linkedinProfile"`
	Findings          []string         `json:"findings"`
	ResumeAssertions  []string         `json:"resumeAssertions"`
	SectionScores     []SectionScore   `json:"sectionScores" validate:"dive"`
	ExperienceMatches []EntryMatch     `json:"experienceMatches"`
	EducationMatches  []EntryMatch     `json:"educationMatches"`
	OverallScore      int              `json:"overallScore" validate:"gte=0,lte=100"`
	ScoringMethod     string           `json:"scoringMethod"`
	Report            string           `json:"report"`
	StageErrors       []string         `json:"stageErrors,omitempty"`
}
