// Package github verifies the projects listed on a résumé against the repositories of a
// GitHub profile.
package github

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/fetch"
	"github.com/jonathan/resume-verifier/internal/llm"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/observability"
	"github.com/jonathan/resume-verifier/internal/pipeline"
	"github.com/jonathan/resume-verifier/internal/prompts"
	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/schemas"
	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// PipelineName labels runs in logs and metrics
const PipelineName = "github"

// Stage names
const (
	StageExtractProjects = "extract_resume_projects"
	StageScrapeProfile   = "scrape_profile"
	StageExtractRepos    = "extract_repos"
	StageMatchProjects   = "match_projects"
	StageVerifyProjects  = "verify_projects"
	StageAggregate       = "aggregate"
)

const (
	// ProfileContentLimit bounds the profile markdown sent to the model
	ProfileContentLimit = 15000
	// RepoContentLimit bounds the repository markdown sent to the model
	RepoContentLimit = 10000
	// DefaultConcurrency is the number of projects verified at once
	DefaultConcurrency = 4

	EmptyRepoFlag    = "Repository could not be scraped (empty or private)"
	failedFlagPrefix = "Verification failed: "
)

// Input is one verification request
type Input struct {
	// Resume is a résumé-shaped map, usually decoded JSON
	Resume map[string]any
	// ProfileURL overrides the GitHub link declared on the résumé
	ProfileURL string
}

type state struct {
	resume     *types.NormalizedResume
	profileURL string
	username   string

	projects      []types.Project
	projectSource string
	markdown      string
	repos         []types.RepoCandidate
	mappings      []types.ProjectMapping
	results       []types.ProjectVerification
	overall       int
}

// Pipeline runs GitHub verifications. It is safe for concurrent use.
type Pipeline struct {
	extractor   *llm.Extractor
	scraper     fetch.Scraper
	concurrency int
	logger      *zap.Logger
	metrics     *observability.Metrics
	onProgress  pipeline.ProgressCallback
	graph       *pipeline.Graph[state]
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithConcurrency bounds how many projects are verified at once. Values below 1 mean unbounded.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithLogger sets the pipeline logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger.OrNop(l) }
}

// WithMetrics records stage metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress receives an event as each stage finishes
func WithProgress(cb pipeline.ProgressCallback) Option {
	return func(p *Pipeline) { p.onProgress = cb }
}

// New builds a Pipeline over extractor and scraper
func New(extractor *llm.Extractor, scraper fetch.Scraper, opts ...Option) (*Pipeline, error) {
	if extractor == nil {
		return nil, apperr.Config("github.New", "an extractor is required")
	}
	if scraper == nil {
		return nil, apperr.Config("github.New", "a scraper is required")
	}
	p := &Pipeline{
		extractor:   extractor,
		scraper:     scraper,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	graph, err := pipeline.New(PipelineName,
		pipeline.Stage[state]{Name: StageExtractProjects, Run: p.extractProjects},
		pipeline.Stage[state]{Name: StageScrapeProfile, DependsOn: []string{StageExtractProjects}, Run: p.scrapeProfile},
		pipeline.Stage[state]{Name: StageExtractRepos, DependsOn: []string{StageScrapeProfile}, Run: p.extractRepos},
		pipeline.Stage[state]{Name: StageMatchProjects, DependsOn: []string{StageExtractRepos}, Run: p.matchProjects},
		pipeline.Stage[state]{Name: StageVerifyProjects, DependsOn: []string{StageMatchProjects}, Run: p.verifyProjects},
		pipeline.Stage[state]{Name: StageAggregate, DependsOn: []string{StageVerifyProjects}, Run: p.aggregate},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "github.New", "invalid stage graph", err)
	}
	p.graph = graph
	return p, nil
}

// Verify runs one verification. The profile URL comes from in.ProfileURL or, when empty, from
// the résumé. An unusable résumé or URL fails before the run starts.
func (p *Pipeline) Verify(ctx context.Context, in Input) (*types.GithubVerificationResult, error) {
	r, err := resume.Normalize(in.Resume)
	if err != nil {
		return nil, err
	}
	profileURL, username, err := NormalizeProfileURL(resume.GitHubURL(in.ProfileURL, r))
	if err != nil {
		return nil, err
	}

	run, err := p.graph.Invoke(ctx, state{resume: r, profileURL: profileURL, username: username},
		pipeline.WithLogger(p.logger.With(zap.String(logger.FieldURL, profileURL))),
		pipeline.WithMetrics(p.metrics),
		pipeline.WithProgress(p.onProgress),
	)
	if err != nil {
		return nil, err
	}

	s := run.State
	matched := 0
	for _, res := range s.results {
		if res.Status == types.StatusMatched {
			matched++
		}
	}
	return &types.GithubVerificationResult{
		RunID:            run.ID,
		GithubProfileURL: s.profileURL,
		ProfileMarkdown:  s.markdown,
		ProjectResults:   s.results,
		OverallScore:     s.overall,
		RunMetadata: types.GithubRunMetadata{
			ProfileUsername: s.username,
			MatchedProjects: matched,
			TotalProjects:   len(s.projects),
			ReposConsidered: len(s.repos),
			ProjectSource:   s.projectSource,
			StageDurations:  run.Durations(),
		},
	}, nil
}

func (p *Pipeline) extractProjects(ctx context.Context, s state) (pipeline.Update[state], error) {
	if len(s.resume.Projects) > 0 {
		projects := cleanProjects(s.resume.Projects)
		return func(s *state) {
			s.projects = projects
			s.projectSource = types.ProjectSourceResume
		}, nil
	}

	var out struct {
		Projects []types.Project `json:"projects"`
	}
	if err := p.extract(ctx, "extract-projects", map[string]string{"Resume": resume.Text(s.resume)}, nil,
		schemas.ResumeProjects, llm.TierLite, &out); err != nil {
		return nil, err
	}
	projects := cleanProjects(out.Projects)
	p.logger.Debug("extracted résumé projects",
		zap.String(logger.FieldRunID, pipeline.RunID(ctx)),
		zap.Int("projects", len(projects)))
	return func(s *state) {
		s.projects = projects
		s.projectSource = types.ProjectSourceExtracted
	}, nil
}

func (p *Pipeline) scrapeProfile(ctx context.Context, s state) (pipeline.Update[state], error) {
	content, err := p.scraper.Scrape(ctx, s.profileURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEntity, "github.scrape_profile", "failed to scrape GitHub profile", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.New(apperr.KindEntity, "github.scrape_profile", "GitHub profile page is empty")
	}
	markdown := fetch.Truncate(content, ProfileContentLimit)
	return func(s *state) { s.markdown = markdown }, nil
}

func (p *Pipeline) extractRepos(ctx context.Context, s state) (pipeline.Update[state], error) {
	var out struct {
		Repos []types.RepoCandidate `json:"repos"`
	}
	if err := p.extract(ctx, "extract-repos",
		map[string]string{"ProfileURL": s.profileURL, "Markdown": s.markdown},
		map[string]string{"Username": s.username},
		schemas.RepoCandidates, llm.TierLite, &out); err != nil {
		return nil, err
	}

	repos := FilterRepos(s.username, out.Repos)
	if dropped := len(out.Repos) - len(repos); dropped > 0 {
		p.logger.Debug("dropped repositories outside the profile",
			zap.String(logger.FieldRunID, pipeline.RunID(ctx)),
			zap.Int("dropped", dropped))
	}
	return func(s *state) { s.repos = repos }, nil
}

func (p *Pipeline) matchProjects(ctx context.Context, s state) (pipeline.Update[state], error) {
	if len(s.projects) == 0 {
		return func(s *state) { s.mappings = []types.ProjectMapping{} }, nil
	}
	if len(s.repos) == 0 {
		mappings := NotFound(s.projects, "No repositories found on the profile")
		return func(s *state) { s.mappings = mappings }, nil
	}

	var out struct {
		Mappings []types.ProjectMapping `json:"mappings"`
	}
	if err := p.extract(ctx, "match-projects", map[string]string{
		"Repos":    toJSON(s.repos),
		"Projects": toJSON(s.projects),
	}, nil, schemas.ProjectMappings, llm.TierAdvanced, &out); err != nil {
		return nil, err
	}
	mappings := Reconcile(s.username, s.projects, s.repos, out.Mappings)
	return func(s *state) { s.mappings = mappings }, nil
}

func (p *Pipeline) verifyProjects(ctx context.Context, s state) (pipeline.Update[state], error) {
	results, err := pipeline.FanOut(ctx, s.mappings, p.concurrency,
		func(ctx context.Context, i int, m types.ProjectMapping) (types.ProjectVerification, error) {
			return p.verifyProject(ctx, s.projects[i], m), nil
		})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func(s *state) { s.results = results }, nil
}

type verification struct {
	RepoSummary     string   `json:"repoSummary"`
	SupportedClaims []string `json:"supportedClaims"`
	MissingClaims   []string `json:"missingClaims"`
	RiskFlags       []string `json:"riskFlags"`
	AlignmentScore  int      `json:"alignmentScore"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
}

// verifyProject never fails; problems are recorded on the result
func (p *Pipeline) verifyProject(ctx context.Context, project types.Project, m types.ProjectMapping) types.ProjectVerification {
	result := types.ProjectVerification{
		ProjectTitle:    m.ProjectTitle,
		RepoName:        m.RepoName,
		RepoURL:         m.RepoURL,
		Status:          types.StatusNotFound,
		MatchConfidence: m.MatchConfidence,
		MatchReasoning:  m.Reasoning,
		SupportedClaims: []string{},
		MissingClaims:   []string{},
		RiskFlags:       []string{},
	}
	if m.Status != types.StatusMatched || m.RepoURL == "" {
		return result
	}
	result.Status = types.StatusMatched

	log := p.logger.With(
		zap.String(logger.FieldRunID, pipeline.RunID(ctx)),
		zap.String(logger.FieldURL, m.RepoURL))

	content, err := p.scraper.Scrape(ctx, m.RepoURL)
	if err != nil {
		log.Warn("failed to scrape repository", zap.Error(err))
		return failed(result, err)
	}
	if strings.TrimSpace(content) == "" {
		result.RiskFlags = append(result.RiskFlags, EmptyRepoFlag)
		return result
	}

	var out verification
	if err := p.extract(ctx, "verify-project", map[string]string{
		"Project":  toJSON(project),
		"RepoURL":  m.RepoURL,
		"Markdown": fetch.Truncate(content, RepoContentLimit),
	}, nil, schemas.ProjectVerification, llm.TierStandard, &out); err != nil {
		log.Warn("failed to verify project", zap.String("project", m.ProjectTitle), zap.Error(err))
		return failed(result, err)
	}

	result.RepoSummary = strings.TrimSpace(out.RepoSummary)
	result.SupportedClaims = cleanList(out.SupportedClaims)
	result.MissingClaims = cleanList(out.MissingClaims)
	result.RiskFlags = cleanList(out.RiskFlags)
	result.AlignmentScore = min(max(out.AlignmentScore, 0), 100)
	result.MatchConfidence = max(m.MatchConfidence, similarity.Clamp01(out.Confidence))
	log.Debug("verified project",
		zap.String("project", m.ProjectTitle),
		zap.Int("alignment", result.AlignmentScore),
		zap.String("reasoning", logger.Truncate(out.Reasoning, 200)))
	return result
}

func failed(result types.ProjectVerification, err error) types.ProjectVerification {
	result.Status = types.StatusFailed
	result.AlignmentScore = 0
	result.RiskFlags = append(result.RiskFlags, failedFlagPrefix+err.Error())
	return result
}

func (p *Pipeline) aggregate(_ context.Context, s state) (pipeline.Update[state], error) {
	overall := OverallScore(s.results)
	return func(s *state) { s.overall = overall }, nil
}

// extract renders the "<prompt>-system" and "<prompt>-user" templates and runs one extraction
func (p *Pipeline) extract(ctx context.Context, prompt string, user, system map[string]string, schema string, tier llm.ModelTier, out any) error {
	op := "github." + prompt
	systemPrompt, err := prompts.Render(prompts.GitHubFile, prompt+"-system", system)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op, "failed to render prompt", err)
	}
	userPrompt, err := prompts.Render(prompts.GitHubFile, prompt+"-user", user)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op, "failed to render prompt", err)
	}
	_, err = p.extractor.Extract(ctx, llm.Call{
		Schema: schemas.MustGet(schema),
		System: systemPrompt,
		User:   userPrompt,
		Tier:   tier,
	}, out)
	return err
}

func cleanProjects(projects []types.Project) []types.Project {
	out := make([]types.Project, 0, len(projects))
	for _, pr := range projects {
		title := strings.TrimSpace(pr.Title)
		if title == "" {
			title = "Untitled Project"
		}
		out = append(out, types.Project{
			Title:        title,
			Description:  strings.TrimSpace(pr.Description),
			Achievements: cleanList(pr.Achievements),
			Skills:       resume.NormalizeSkills(pr.Skills),
		})
	}
	return out
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(data)
}
