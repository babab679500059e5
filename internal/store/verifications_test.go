package store

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/types"
)

func TestListQuery(t *testing.T) {
	query, args := listQuery(ListFilters{})
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $1")
	assert.Equal(t, []any{50}, args)

	query, args = listQuery(ListFilters{ResumeID: "r1", Status: StatusFailed, Limit: 5})
	assert.Contains(t, query, "AND resume_id = $1")
	assert.Contains(t, query, "AND status = $2")
	assert.NotContains(t, query, "kind =")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []any{"r1", StatusFailed, 5}, args)
}

func TestVerification_GithubResult(t *testing.T) {
	data, err := json.Marshal(types.GithubVerificationResult{
		GithubProfileURL: "https://github.com/alice?tab=repositories",
		OverallScore:     71,
	})
	require.NoError(t, err)

	v := &Verification{ID: uuid.New(), Kind: KindGitHub, Result: data}
	result, err := v.GithubResult()
	require.NoError(t, err)
	assert.Equal(t, 71, result.OverallScore)

	_, err = (&Verification{ID: uuid.New(), Kind: KindLinkedIn, Result: data}).GithubResult()
	assert.Error(t, err)

	_, err = (&Verification{ID: uuid.New(), Kind: KindGitHub}).GithubResult()
	assert.Error(t, err)

	_, err = (&Verification{ID: uuid.New(), Kind: KindGitHub, Result: json.RawMessage(`{"overallScore": "high"}`)}).GithubResult()
	assert.Error(t, err)
}
