package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

func TestNormalizeProfileURL(t *testing.T) {
	for _, raw := range []string{
		"alice",
		"@alice",
		"github.com/alice",
		"https://www.github.com/alice",
		"http://github.com/alice/",
		"alice/repositories",
		"https://github.com/alice/some-repo?tab=stars#readme",
		"  github.com/@alice  ",
	} {
		t.Run(raw, func(t *testing.T) {
			u, name, err := NormalizeProfileURL(raw)
			require.NoError(t, err)
			assert.Equal(t, "alice", name)
			assert.Equal(t, "https://github.com/alice?tab=repositories", u)
		})
	}
}

func TestNormalizeProfileURL_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "@", "https://github.com/", "-alice", "has space", "a_b"} {
		t.Run(raw, func(t *testing.T) {
			_, _, err := NormalizeProfileURL(raw)
			require.Error(t, err)
			assert.Equal(t, apperr.KindEntity, apperr.KindOf(err))
			assert.False(t, apperr.Retryable(err))
		})
	}
}

func TestBuildRepoURL(t *testing.T) {
	tests := []struct {
		name                         string
		username, repoName, fallback string
		expected                     string
	}{
		{"fallback on github", "alice", "tracker", "https://github.com/alice/Tracker", "https://github.com/alice/Tracker"},
		{"built", "alice", "tracker", "", "https://github.com/alice/tracker"},
		{"non github fallback ignored", "alice", "tracker", "https://gitlab.com/alice/tracker", "https://github.com/alice/tracker"},
		{"missing repo", "alice", " ", "", ""},
		{"missing user", "", "tracker", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildRepoURL(tt.username, tt.repoName, tt.fallback))
		})
	}
}

func TestRepoOwner(t *testing.T) {
	assert.Equal(t, "alice", repoOwner("https://github.com/alice/tracker"))
	assert.Equal(t, "Alice", repoOwner("https://www.github.com/Alice/tracker/tree/main"))
	assert.Equal(t, "", repoOwner("https://github.com/alice"))
	assert.Equal(t, "", repoOwner("https://gitlab.com/alice/tracker"))
	assert.Equal(t, "alice", repoOwner("github.com/alice/tracker"))
	assert.Equal(t, "alice", repoOwner("www.github.com/alice/tracker"))
	assert.Equal(t, "alice", repoOwner("/alice/tracker"))
	assert.Equal(t, "", repoOwner(""))
}

func TestCanonicalRepoURL(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"https://github.com/alice/tracker", "https://github.com/alice/tracker"},
		{" github.com/alice/tracker ", "https://github.com/alice/tracker"},
		{"www.github.com/alice/tracker", "https://www.github.com/alice/tracker"},
		{"/alice/tracker", "https://github.com/alice/tracker"},
		{"//github.com/alice/tracker", "https://github.com/alice/tracker"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, canonicalRepoURL(tt.in), tt.in)
	}
}
