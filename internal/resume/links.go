package resume

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-verifier/internal/types"
)

// githubPaths are the raw résumé fields that may carry a GitHub profile, in priority order
var githubPaths = []string{
	"profiles.github",
	"profiles.githubUrl",
	"github",
	"githubUrl",
}

// ResolveGitHubURL picks the GitHub profile to verify: an explicit value first, then the
// résumé's profiles.github, then the first link that mentions github.com. It returns ""
// when nothing is found.
func ResolveGitHubURL(explicit string, rawResume []byte) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if len(rawResume) == 0 || !gjson.ValidBytes(rawResume) {
		return ""
	}

	doc := gjson.ParseBytes(rawResume)
	for _, path := range githubPaths {
		if v := strings.TrimSpace(doc.Get(path).String()); v != "" {
			return v
		}
	}

	var found string
	for _, path := range []string{"links", "websites"} {
		doc.Get(path).ForEach(func(_, link gjson.Result) bool {
			if isGitHubLink(link.String()) {
				found = strings.TrimSpace(link.String())
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// GitHubURL resolves the GitHub profile from an already normalized résumé
func GitHubURL(explicit string, r *types.NormalizedResume) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if r == nil {
		return ""
	}
	if r.Profiles.GitHub != "" {
		return r.Profiles.GitHub
	}
	for _, link := range r.Links {
		if isGitHubLink(link) {
			return link
		}
	}
	return ""
}

func isGitHubLink(s string) bool {
	return strings.Contains(strings.ToLower(s), "github.com")
}
