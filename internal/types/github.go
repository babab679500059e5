package types

// RepoCandidate is one repository surfaced from a scraped GitHub profile page
type RepoCandidate struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
}

// ProjectMapping maps a résumé project to its best repository candidate
type ProjectMapping struct {
	ProjectTitle    string      `json:"projectTitle"`
	RepoName        string      `json:"repoName"`
	RepoURL         string      `json:"repoUrl"`
	Status          MatchStatus `json:"status"`
	MatchConfidence float64     `json:"matchConfidence"`
	Reasoning       string      `json:"reasoning"`
}

// ProjectVerification is the terminal per-project result
type ProjectVerification struct {
	ProjectTitle    string      `json:"projectTitle"`
	RepoName        string      `json:"repoName"`
	RepoURL         string      `json:"repoUrl"`
	Status          MatchStatus `json:"status"`
	MatchConfidence float64     `json:"matchConfidence"`
	MatchReasoning  string      `json:"matchReasoning"`
	RepoSummary     string      `json:"repoSummary"`
	SupportedClaims []string    `json:"supportedClaims"`
	MissingClaims   []string    `json:"missingClaims"`
	RiskFlags       []string    `json:"riskFlags"`
	AlignmentScore  int         `json:"alignmentScore" validate:"gte=0,lte=100"`
}

// Project sources recorded in GithubRunMetadata
const (
	ProjectSourceResume    = "resume"
	ProjectSourceExtracted = "extracted"
)

// GithubRunMetadata summarizes a GitHub verification run
type GithubRunMetadata struct {
	ProfileUsername string           `json:"profileUsername"`
	MatchedProjects int              `json:"matchedProjects"`
	TotalProjects   int              `json:"totalProjects"`
	ReposConsidered int              `json:"reposConsidered"`
	ProjectSource   string           `json:"projectSource"`
	StageDurations  map[string]int64 `json:"stageDurationsMs,omitempty"`
}

// GithubVerificationResult is the output of the GitHub verification pipeline
type GithubVerificationResult struct {
	RunID            string                `json:"runId"`
	GithubProfileURL string                `json:"githubProfileUrl"`
	ProfileMarkdown  string                `json:"profileMarkdown"`
	ProjectResults   []ProjectVerification `json:"projectResults" validate:"dive"`
	OverallScore     int                   `json:"overallScore" validate:"gte=0,lte=100"`
	RunMetadata      GithubRunMetadata     `json:"runMetadata"`
}
