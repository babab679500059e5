package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://github.com/octocat?tab=repositories", PlatformGitHubProfile},
		{"https://www.github.com/octocat", PlatformGitHubProfile},
		{"https://github.com/octocat/hello-world", PlatformGitHubRepo},
		{"https://github.com/", PlatformUnknown},
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"https://example.com/careers", PlatformUnknown},
		{"https://notgreenhouse.io.example.com/jobs", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestContentSelectors(t *testing.T) {
	assert.Contains(t, ContentSelectors(PlatformGitHubRepo), "article.markdown-body")
	assert.Contains(t, ContentSelectors(PlatformGitHubProfile), "main")
	assert.Contains(t, ContentSelectors(PlatformGreenhouse), ".job__description")
	assert.Equal(t, DefaultTextSelectors(), ContentSelectors(PlatformUnknown))
}

func TestNoiseSelectors(t *testing.T) {
	assert.Nil(t, NoiseSelectors(PlatformUnknown))
	assert.Contains(t, NoiseSelectors(PlatformLever), ".application-form")
	assert.NotEmpty(t, NoiseSelectors(PlatformGitHubRepo))
}
