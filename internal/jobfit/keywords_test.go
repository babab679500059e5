package jobfit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/llm/llmtest"
	"github.com/jonathan/resume-verifier/internal/schemas"
	"github.com/jonathan/resume-verifier/internal/types"
)

const keywordsReply = `{"keywords": [
  {"priority": "NICE_TO_HAVE", "text": "golang", "type": "TECH_TOOL", "jobMatches": ["Go experience"]},
  {"priority": "MUST_HAVE", "text": "Go", "type": "TECH_TOOL", "jobMatches": ["Go experience", "3+ years of Go"]},
  {"priority": "MUST_HAVE", "text": "Kubernetes", "type": "TECH_TOOL", "jobMatches": []},
  {"priority": "OPTIONAL", "text": "  mentoring  juniors ", "type": "SOFT_SKILL", "jobMatches": []},
  {"priority": "OPTIONAL", "text": " ", "type": "DOMAIN", "jobMatches": []}
]}`

func TestNormalizeKeywords(t *testing.T) {
	out := NormalizeKeywords([]types.JobKeyword{
		{Priority: types.PriorityNiceToHave, Type: types.KeywordTechTool, Text: "golang", JobMatches: []string{"Go experience"}},
		{Priority: types.PriorityMustHave, Type: types.KeywordTechTool, Text: "Go", JobMatches: []string{"Go experience", " 3+ years "}},
		{Priority: "", Type: types.KeywordSoftSkill, Text: "mentoring"},
		{Priority: types.PriorityMustHave, Type: types.KeywordDomain, Text: "   "},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Go", out[0].Text)
	assert.Equal(t, types.PriorityMustHave, out[0].Priority)
	assert.Equal(t, []string{"Go experience", "3+ years"}, out[0].JobMatches)

	assert.Equal(t, "mentoring", out[1].Text)
	assert.Equal(t, types.PriorityOptional, out[1].Priority)
	assert.NotNil(t, out[1].JobMatches)
}

func TestAnalyzer_Fit(t *testing.T) {
	mock := &llmtest.MockClient{Replies: map[string]string{schemas.JobKeywords: keywordsReply}}
	a, err := NewAnalyzer(llmtest.NewExtractor(mock), nil)
	require.NoError(t, err)

	result, err := a.Fit(context.Background(), testResume(t), "We need a Go engineer with Kubernetes.")
	require.NoError(t, err)

	require.Len(t, result.Keywords, 3)
	assert.Equal(t, "mentoring juniors", result.Keywords[2].Text)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "Go", result.Matched[0].Text)
	// 1.0 / (1.0 + 1.0 + 0.3)
	assert.Equal(t, 43, result.Score)

	prompts := mock.UserPrompts(schemas.JobKeywords)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "We need a Go engineer with Kubernetes.")
}

func TestAnalyzer_EmptyDescription(t *testing.T) {
	mock := &llmtest.MockClient{}
	a, err := NewAnalyzer(llmtest.NewExtractor(mock), nil)
	require.NoError(t, err)

	_, err = a.ExtractKeywords(context.Background(), " \n ")
	assert.Equal(t, apperr.KindEntity, apperr.KindOf(err))
	assert.Empty(t, mock.Requests())
}

func TestNewAnalyzer_RequiresExtractor(t *testing.T) {
	_, err := NewAnalyzer(nil, nil)
	assert.Equal(t, apperr.KindConfig, apperr.KindOf(err))
}
