package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/types"
)

func TestFilterRepos(t *testing.T) {
	repos := FilterRepos("alice", []types.RepoCandidate{
		{Name: "tracker", URL: "https://github.com/alice/tracker"},
		{Name: "Tracker", URL: "https://github.com/alice/Tracker"},
		{Name: "kube", URL: "https://github.com/kubernetes/kube"},
		{Name: "notes", URL: ""},
		{Name: " ", URL: "https://github.com/alice/blank"},
		{Name: "dotfiles", URL: "https://github.com/ALICE/dotfiles"},
	})

	require.Len(t, repos, 3)
	assert.Equal(t, "tracker", repos[0].Name)
	assert.Equal(t, "https://github.com/alice/notes", repos[1].URL)
	assert.NotNil(t, repos[1].Topics)
	assert.Equal(t, "dotfiles", repos[2].Name)
}

func TestFilterRepos_RelativeAndSchemelessURLs(t *testing.T) {
	repos := FilterRepos("alice", []types.RepoCandidate{
		{Name: "payments", URL: "github.com/alice/payments"},
		{Name: "notes", URL: "/alice/notes"},
		{Name: "dots", URL: "www.github.com/alice/dots"},
		{Name: "scratch", URL: "scratch"},
		{Name: "other", URL: "github.com/bob/other"},
		{Name: "theirs", URL: "/bob/theirs"},
	})

	require.Len(t, repos, 4)
	assert.Equal(t, "https://github.com/alice/payments", repos[0].URL)
	assert.Equal(t, "https://github.com/alice/notes", repos[1].URL)
	assert.Equal(t, "https://www.github.com/alice/dots", repos[2].URL)
	assert.Equal(t, "https://github.com/alice/scratch", repos[3].URL)
}

func TestReconcile_SchemelessMappingURL(t *testing.T) {
	repos := FilterRepos("alice", []types.RepoCandidate{{Name: "task-tracker", URL: "github.com/alice/task-tracker"}})
	out := Reconcile("alice",
		[]types.Project{{Title: "Tracker"}},
		repos,
		[]types.ProjectMapping{{ProjectTitle: "Tracker", RepoURL: "github.com/alice/task-tracker", Status: types.StatusMatched, MatchConfidence: 0.7}},
	)
	require.Len(t, out, 1)
	assert.Equal(t, types.StatusMatched, out[0].Status)
	assert.Equal(t, "https://github.com/alice/task-tracker", out[0].RepoURL)
}

func TestReconcile(t *testing.T) {
	projects := []types.Project{
		{Title: "Task Tracker App"},
		{Title: "Payments Gateway"},
		{Title: "Weak Match"},
		{Title: "Someone Else's Repo"},
		{Title: "Missing From Reply"},
	}
	repos := []types.RepoCandidate{
		{Name: "tracker", URL: "https://github.com/alice/tracker"},
		{Name: "payments", URL: "https://github.com/alice/payments"},
		{Name: "weak", URL: "https://github.com/alice/weak"},
	}
	mappings := []types.ProjectMapping{
		{ProjectTitle: "payments  gateway", RepoName: "Payments", Status: types.StatusMatched, MatchConfidence: 0.9, Reasoning: "same name"},
		{ProjectTitle: "Task Tracker App", Status: types.StatusNotFound, RepoName: "tracker", RepoURL: "https://github.com/alice/tracker"},
		{ProjectTitle: "Weak Match", RepoName: "weak", Status: types.StatusMatched, MatchConfidence: 0.3},
		{ProjectTitle: "Someone Else's Repo", RepoName: "kube", Status: types.StatusMatched, MatchConfidence: 0.95},
		{ProjectTitle: "Payments Gateway", RepoName: "tracker", Status: types.StatusMatched, MatchConfidence: 0.99},
	}

	out := Reconcile("alice", projects, repos, mappings)
	require.Len(t, out, len(projects))
	for i, m := range out {
		assert.Equal(t, projects[i].Title, m.ProjectTitle)
	}

	assert.Equal(t, types.StatusNotFound, out[0].Status)
	assert.Empty(t, out[0].RepoURL)

	assert.Equal(t, types.StatusMatched, out[1].Status)
	assert.Equal(t, "payments", out[1].RepoName)
	assert.Equal(t, "https://github.com/alice/payments", out[1].RepoURL)
	assert.Equal(t, 0.9, out[1].MatchConfidence)

	assert.Equal(t, types.StatusNotFound, out[2].Status)
	assert.Contains(t, out[2].Reasoning, "below threshold")

	assert.Equal(t, types.StatusNotFound, out[3].Status)
	assert.Contains(t, out[3].Reasoning, "not among")

	assert.Equal(t, types.StatusNotFound, out[4].Status)
	assert.Equal(t, "No mapping returned for project", out[4].Reasoning)
}

func TestReconcile_MatchesByURL(t *testing.T) {
	out := Reconcile("alice",
		[]types.Project{{Title: "Tracker"}},
		[]types.RepoCandidate{{Name: "task-tracker", URL: "https://github.com/alice/task-tracker"}},
		[]types.ProjectMapping{{ProjectTitle: "tracker", RepoURL: "https://github.com/alice/task-tracker/", Status: types.StatusMatched, MatchConfidence: 0.7}},
	)
	require.Len(t, out, 1)
	assert.Equal(t, types.StatusMatched, out[0].Status)
	assert.Equal(t, "task-tracker", out[0].RepoName)
	assert.Equal(t, "https://github.com/alice/task-tracker", out[0].RepoURL)
}

func TestReconcile_CoercesStatus(t *testing.T) {
	out := Reconcile("alice",
		[]types.Project{{Title: "Tracker"}, {Title: "Notes"}},
		[]types.RepoCandidate{
			{Name: "tracker", URL: "https://github.com/alice/tracker"},
			{Name: "notes", URL: "https://github.com/alice/notes"},
		},
		[]types.ProjectMapping{
			{ProjectTitle: "Tracker", RepoName: "tracker", Status: " matched ", MatchConfidence: 0.9},
			{ProjectTitle: "Notes", RepoName: "notes", Status: types.StatusPartial, MatchConfidence: 0.9},
		},
	)
	require.Len(t, out, 2)
	assert.Equal(t, types.StatusMatched, out[0].Status)
	assert.Equal(t, "https://github.com/alice/tracker", out[0].RepoURL)
	assert.Equal(t, types.StatusNotFound, out[1].Status)
	assert.Empty(t, out[1].RepoURL)
	assert.Contains(t, out[1].Reasoning, `unknown mapping status "PARTIAL"`)
}

func TestReconcile_ThresholdIsInclusive(t *testing.T) {
	out := Reconcile("alice",
		[]types.Project{{Title: "Tracker"}},
		[]types.RepoCandidate{{Name: "tracker", URL: "https://github.com/alice/tracker"}},
		[]types.ProjectMapping{{ProjectTitle: "Tracker", RepoName: "tracker", Status: types.StatusMatched, MatchConfidence: WeakMatchThreshold}},
	)
	assert.Equal(t, types.StatusMatched, out[0].Status)
}

func TestReconcile_SharedRepoStaysMatched(t *testing.T) {
	out := Reconcile("alice",
		[]types.Project{{Title: "Tracker API"}, {Title: "Tracker UI"}},
		[]types.RepoCandidate{{Name: "tracker", URL: "https://github.com/alice/tracker"}},
		[]types.ProjectMapping{
			{ProjectTitle: "Tracker API", RepoName: "tracker", Status: types.StatusMatched, MatchConfidence: 0.8},
			{ProjectTitle: "Tracker UI", RepoName: "tracker", Status: types.StatusMatched, MatchConfidence: 0.6},
		},
	)
	require.Len(t, out, 2)
	assert.Equal(t, types.StatusMatched, out[0].Status)
	assert.Equal(t, types.StatusMatched, out[1].Status)
	assert.Equal(t, out[0].RepoURL, out[1].RepoURL)
}

func TestNotFound(t *testing.T) {
	out := NotFound([]types.Project{{Title: "A"}, {Title: "B"}}, "none")
	require.Len(t, out, 2)
	assert.Equal(t, types.StatusNotFound, out[1].Status)
	assert.Equal(t, "B", out[1].ProjectTitle)
	assert.Equal(t, "none", out[1].Reasoning)
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name     string
		results  []types.ProjectVerification
		expected int
	}{
		{"empty", nil, 0},
		{"none matched", []types.ProjectVerification{
			{Status: types.StatusNotFound},
			{Status: types.StatusFailed, AlignmentScore: 90},
		}, 0},
		{"single", []types.ProjectVerification{{Status: types.StatusMatched, AlignmentScore: 73}}, 73},
		{"rounded mean of matched only", []types.ProjectVerification{
			{Status: types.StatusMatched, AlignmentScore: 80},
			{Status: types.StatusMatched, AlignmentScore: 65},
			{Status: types.StatusNotFound},
		}, 73},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OverallScore(tt.results))
		})
	}
}
