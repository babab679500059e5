package types

// KeywordPriority ranks how strongly a job posting asks for a keyword
type KeywordPriority string

const (
	PriorityMustHave   KeywordPriority = "MUST_HAVE"
	PriorityNiceToHave KeywordPriority = "NICE_TO_HAVE"
	PriorityOptional   KeywordPriority = "OPTIONAL"
)

// KeywordType classifies a job keyword
type KeywordType string

const (
	KeywordTechTool      KeywordType = "TECH_TOOL"
	KeywordSoftSkill     KeywordType = "SOFT_SKILL"
	KeywordCertification KeywordType = "CERTIFICATION"
	KeywordDomain        KeywordType = "DOMAIN"
)

// JobKeyword is a keyword extracted from a job description
type JobKeyword struct {
	Priority   KeywordPriority `json:"priority"`
	Type       KeywordType     `json:"type"`
	Text       string          `json:"text"`
	JobMatches []string        `json:"jobMatches"`
}

// JobFitResult scores how well a résumé covers a job's keywords
type JobFitResult struct {
	Score    int          `json:"score" validate:"gte=0,lte=100"`
	Matched  []JobKeyword `json:"matched"`
	Missing  []JobKeyword `json:"missing"`
	Keywords []JobKeyword `json:"keywords"`
}
