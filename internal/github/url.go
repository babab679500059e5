package github

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)
	schemePattern   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?`)
	hostPattern     = regexp.MustCompile(`(?i)^github\.com/`)
)

// NormalizeProfileURL turns a profile reference such as "@octocat", "github.com/octocat" or
// "https://www.github.com/octocat/repo?tab=stars" into the repositories tab URL and username
func NormalizeProfileURL(raw string) (profileURL, username string, err error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", "", apperr.New(apperr.KindEntity, "github.NormalizeProfileURL", "GitHub profile URL is required")
	}

	clean = strings.TrimPrefix(clean, "@")
	clean = schemePattern.ReplaceAllString(clean, "")
	clean = hostPattern.ReplaceAllString(clean, "")
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}

	for _, segment := range strings.Split(clean, "/") {
		if segment != "" {
			username = strings.TrimPrefix(segment, "@")
			break
		}
	}

	if !usernamePattern.MatchString(username) {
		return "", "", apperr.New(apperr.KindEntity, "github.NormalizeProfileURL", "could not parse GitHub username from "+strings.TrimSpace(raw))
	}
	return "https://github.com/" + username + "?tab=repositories", username, nil
}

// BuildRepoURL prefers a fallback that already points at github.com and otherwise joins the
// username and repository name. It returns "" when neither is possible.
func BuildRepoURL(username, repoName, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if strings.Contains(strings.ToLower(fallback), "github.com") {
		return fallback
	}
	username, repoName = strings.TrimSpace(username), strings.TrimSpace(repoName)
	if username == "" || repoName == "" {
		return ""
	}
	return "https://github.com/" + username + "/" + url.PathEscape(repoName)
}

// canonicalRepoURL adds a missing scheme and resolves root-relative links against github.com
func canonicalRepoURL(u string) string {
	u = strings.TrimSpace(u)
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return "https://github.com" + u
	case !strings.Contains(u, "://"):
		return "https://" + u
	}
	return u
}

// repoOwner returns the owner segment of a github.com repository URL, or "" if u is not one
func repoOwner(u string) string {
	parsed, err := url.Parse(canonicalRepoURL(u))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host != "github.com" {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" {
		return ""
	}
	return segments[0]
}
