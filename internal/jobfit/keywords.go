package jobfit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/llm"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/prompts"
	"github.com/jonathan/resume-verifier/internal/resume"
	"github.com/jonathan/resume-verifier/internal/schemas"
	"github.com/jonathan/resume-verifier/internal/types"
)

// priorityRank orders priorities for deduplication, higher wins
var priorityRank = map[types.KeywordPriority]int{
	types.PriorityMustHave:   3,
	types.PriorityNiceToHave: 2,
	types.PriorityOptional:   1,
}

// Analyzer extracts job keywords and scores résumés against them
type Analyzer struct {
	extractor *llm.Extractor
	logger    *zap.Logger
}

// NewAnalyzer returns an Analyzer over extractor. A nil logger disables logging.
func NewAnalyzer(extractor *llm.Extractor, l *zap.Logger) (*Analyzer, error) {
	if extractor == nil {
		return nil, apperr.Config("jobfit.NewAnalyzer", "an extractor is required")
	}
	return &Analyzer{extractor: extractor, logger: logger.OrNop(l)}, nil
}

// ExtractKeywords runs one structured extraction over a job description
func (a *Analyzer) ExtractKeywords(ctx context.Context, description string) ([]types.JobKeyword, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.New(apperr.KindEntity, "jobfit.ExtractKeywords", "job description is empty")
	}

	system, err := prompts.Render(prompts.JobFitFile, "extract-keywords-system", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "jobfit.ExtractKeywords", "failed to render prompt", err)
	}
	user, err := prompts.Render(prompts.JobFitFile, "extract-keywords-user", map[string]string{"Description": description})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "jobfit.ExtractKeywords", "failed to render prompt", err)
	}

	var out struct {
		Keywords []types.JobKeyword `json:"keywords"`
	}
	if _, err := a.extractor.Extract(ctx, llm.Call{
		Schema: schemas.MustGet(schemas.JobKeywords),
		System: system,
		User:   user,
		Tier:   llm.TierStandard,
	}, &out); err != nil {
		return nil, err
	}

	keywords := NormalizeKeywords(out.Keywords)
	a.logger.Debug("extracted job keywords",
		zap.Int("raw", len(out.Keywords)),
		zap.Int("keywords", len(keywords)))
	return keywords, nil
}

// Fit extracts keywords from description and scores r against them
func (a *Analyzer) Fit(ctx context.Context, r *types.NormalizedResume, description string) (*types.JobFitResult, error) {
	keywords, err := a.ExtractKeywords(ctx, description)
	if err != nil {
		return nil, err
	}
	result := Score(r, keywords)
	a.logger.Info("scored job fit",
		zap.Int("score", result.Score),
		zap.Int("matched", len(result.Matched)),
		zap.Int("missing", len(result.Missing)))
	return &result, nil
}

// NormalizeKeywords canonicalizes tech keyword names and merges duplicates, keeping the
// highest priority and the union of quotes. First-seen order is kept.
func NormalizeKeywords(keywords []types.JobKeyword) []types.JobKeyword {
	out := make([]types.JobKeyword, 0, len(keywords))
	index := make(map[string]int, len(keywords))

	for _, k := range keywords {
		text := strings.Join(strings.Fields(k.Text), " ")
		if text == "" {
			continue
		}
		if k.Type == types.KeywordTechTool {
			text = resume.NormalizeSkillName(text)
		}
		if _, ok := priorityRank[k.Priority]; !ok {
			k.Priority = types.PriorityOptional
		}
		k.Text = text
		k.JobMatches = mergeQuotes(nil, k.JobMatches)

		key := strings.ToLower(text)
		if i, seen := index[key]; seen {
			if priorityRank[k.Priority] > priorityRank[out[i].Priority] {
				out[i].Priority = k.Priority
			}
			out[i].JobMatches = mergeQuotes(out[i].JobMatches, k.JobMatches)
			continue
		}
		index[key] = len(out)
		out = append(out, k)
	}
	return out
}

func mergeQuotes(dst, src []string) []string {
	if dst == nil {
		dst = []string{}
	}
	for _, q := range src {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == q {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, q)
		}
	}
	return dst
}
