// Package linkedin verifies a résumé against the text of a LinkedIn PDF export.
//
// The pipeline extracts a structured profile with one LLM call, then runs three independent
// branches over it: résumé assertion listing and the narrative cross-check (both optional LLM
// calls) and the deterministic section scorer. A markdown report closes the run.
package linkedin

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/llm"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/observability"
	"github.com/jonathan/resume-verifier/internal/pipeline"
	"github.com/jonathan/resume-verifier/internal/prompts"
	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/schemas"
	"github.com/jonathan/resume-verifier/internal/types"
)

// PipelineName labels runs in logs and metrics
const PipelineName = "linkedin"

// Stage names
const (
	StageNormalize  = "normalize"
	StageExtract    = "extract_linkedin_profile"
	StageSummarize  = "summarize_resume"
	StageCrossCheck = "cross_check_narrative"
	StageScore      = "score"
	StageReport     = "report"
)

// Input is one verification request
type Input struct {
	// Resume is a résumé-shaped map, usually decoded JSON
	Resume map[string]any
	// SourceText is the text extracted from the LinkedIn PDF
	SourceText string
}

// state is threaded through the stages. Stages read a snapshot and return reducers.
type state struct {
	input      Input
	resume     *types.NormalizedResume
	profile    *types.LinkedInProfile
	assertions []string
	findings   []string
	scores     *Scores
	report     string
}

// Pipeline runs LinkedIn verifications. It is safe for concurrent use.
type Pipeline struct {
	extractor  *llm.Extractor
	weights    Weights
	now        func() time.Time
	logger     *zap.Logger
	metrics    *observability.Metrics
	onProgress pipeline.ProgressCallback
	graph      *pipeline.Graph[state]
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWeights replaces the default section weights
func WithWeights(w Weights) Option {
	return func(p *Pipeline) { p.weights = w }
}

// WithClock sets the time used for recency and open-ended date ranges
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
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

// New builds a Pipeline over extractor
func New(extractor *llm.Extractor, opts ...Option) (*Pipeline, error) {
	if extractor == nil {
		return nil, apperr.Config("linkedin.New", "an extractor is required")
	}
	p := &Pipeline{
		extractor: extractor,
		weights:   DefaultWeights(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.weights.Validate(); err != nil {
		return nil, err
	}

	graph, err := pipeline.New(PipelineName,
		pipeline.Stage[state]{Name: StageNormalize, Run: p.normalize},
		pipeline.Stage[state]{Name: StageExtract, DependsOn: []string{StageNormalize}, Run: p.extractProfile},
		pipeline.Stage[state]{Name: StageSummarize, DependsOn: []string{StageExtract}, Optional: true, Run: p.summarizeResume},
		pipeline.Stage[state]{Name: StageCrossCheck, DependsOn: []string{StageExtract}, Optional: true, Run: p.crossCheck},
		pipeline.Stage[state]{Name: StageScore, DependsOn: []string{StageExtract}, Run: p.score},
		pipeline.Stage[state]{Name: StageReport, DependsOn: []string{StageSummarize, StageCrossCheck, StageScore}, Run: p.renderReport},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "linkedin.New", "invalid stage graph", err)
	}
	p.graph = graph
	return p, nil
}

// Verify runs one verification. A failure of the normalize, extraction or scoring stage
// aborts the run; narrative failures are listed in StageErrors.
func (p *Pipeline) Verify(ctx context.Context, in Input) (*types.VerificationResult, error) {
	run, err := p.graph.Invoke(ctx, state{input: in},
		pipeline.WithLogger(p.logger),
		pipeline.WithMetrics(p.metrics),
		pipeline.WithProgress(p.onProgress),
	)
	if err != nil {
		return nil, err
	}

	s := run.State
	result := &types.VerificationResult{
		RunID:             run.ID,
		LinkedInProfile:   s.profile,
		Findings:          nonNil(s.findings),
		ResumeAssertions:  nonNil(s.assertions),
		SectionScores:     s.scores.Sections,
		ExperienceMatches: s.scores.ExperienceMatches,
		EducationMatches:  s.scores.EducationMatches,
		OverallScore:      s.scores.Overall,
		ScoringMethod:     ScoringMethod,
		Report:            s.report,
	}
	for _, rec := range run.Failed() {
		result.StageErrors = append(result.StageErrors, rec.Name+": "+rec.Err.Error())
	}
	return result, nil
}

func (p *Pipeline) normalize(_ context.Context, s state) (pipeline.Update[state], error) {
	r, err := resume.Normalize(s.input.Resume)
	if err != nil {
		return nil, err
	}
	return func(s *state) { s.resume = r }, nil
}

func (p *Pipeline) extractProfile(ctx context.Context, s state) (pipeline.Update[state], error) {
	text := strings.TrimSpace(s.input.SourceText)
	if text == "" {
		return nil, apperr.New(apperr.KindEntity, "linkedin.extract", "LinkedIn text is empty")
	}

	system, err := prompts.Render(prompts.LinkedInFile, "extract-profile-system", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "linkedin.extract", "failed to render prompt", err)
	}
	user, err := prompts.Render(prompts.LinkedInFile, "extract-profile-user", map[string]string{"Text": text})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "linkedin.extract", "failed to render prompt", err)
	}

	raw, err := llm.Extract[types.LinkedInProfile](ctx, p.extractor, llm.Call{
		Schema: schemas.MustGet(schemas.LinkedInProfile),
		System: system,
		User:   user,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	profile := NormalizeProfile(raw)
	p.logger.Debug("extracted LinkedIn profile",
		zap.String(logger.FieldRunID, pipeline.RunID(ctx)),
		zap.Int("experiences", len(profile.Experiences)),
		zap.Int("educations", len(profile.Educations)),
		zap.Int("skills", len(profile.Skills)))
	return func(s *state) { s.profile = &profile }, nil
}

func (p *Pipeline) summarizeResume(ctx context.Context, s state) (pipeline.Update[state], error) {
	var out struct {
		Assertions []string `json:"assertions"`
	}
	if err := p.narrate(ctx, schemas.ResumeAssertions, "summarize-resume", map[string]string{
		"Resume": resume.PromptJSON(s.resume),
	}, &out); err != nil {
		return nil, err
	}
	assertions := trimAll(out.Assertions)
	return func(s *state) { s.assertions = append(s.assertions, assertions...) }, nil
}

func (p *Pipeline) crossCheck(ctx context.Context, s state) (pipeline.Update[state], error) {
	var out struct {
		Findings []string `json:"findings"`
	}
	if err := p.narrate(ctx, schemas.NarrativeFindings, "cross-check", map[string]string{
		"Resume":  resume.PromptJSON(s.resume),
		"Profile": profileJSON(s.profile),
	}, &out); err != nil {
		return nil, err
	}
	findings := trimAll(out.Findings)
	return func(s *state) { s.findings = append(s.findings, findings...) }, nil
}

// narrate runs one of the lite-tier narrative prompts
func (p *Pipeline) narrate(ctx context.Context, schema, prompt string, data map[string]string, out any) error {
	system, err := prompts.Render(prompts.LinkedInFile, prompt+"-system", nil)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "linkedin."+prompt, "failed to render prompt", err)
	}
	user, err := prompts.Render(prompts.LinkedInFile, prompt+"-user", data)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "linkedin."+prompt, "failed to render prompt", err)
	}
	_, err = p.extractor.Extract(ctx, llm.Call{
		Schema: schemas.MustGet(schema),
		System: system,
		User:   user,
		Tier:   llm.TierLite,
	}, out)
	return err
}

func (p *Pipeline) score(_ context.Context, s state) (pipeline.Update[state], error) {
	scores := Score(s.resume, s.profile, p.weights, p.now())
	return func(s *state) { s.scores = &scores }, nil
}

func (p *Pipeline) renderReport(_ context.Context, s state) (pipeline.Update[state], error) {
	report := RenderReport(s.resume, *s.scores, s.findings, s.assertions)
	return func(s *state) { s.report = report }, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
