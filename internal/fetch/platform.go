package fetch

import (
	"net/url"
	"strings"
)

// Platform is a site family with its own page layout.
type Platform string

const (
	PlatformGitHubProfile Platform = "github_profile"
	PlatformGitHubRepo    Platform = "github_repo"
	PlatformGreenhouse    Platform = "greenhouse"
	PlatformLever         Platform = "lever"
	PlatformWorkday       Platform = "workday"
	PlatformUnknown       Platform = "unknown"
)

// jobBoardHosts maps a host suffix to its job board
var jobBoardHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
}

// DetectPlatform identifies the site family of a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	if host == "github.com" {
		segments := pathSegments(parsed.Path)
		switch len(segments) {
		case 0:
			return PlatformUnknown
		case 1:
			return PlatformGitHubProfile
		default:
			return PlatformGitHubRepo
		}
	}

	for _, jb := range jobBoardHosts {
		if host == jb.suffix || strings.HasSuffix(host, "."+jb.suffix) {
			return jb.platform
		}
	}
	return PlatformUnknown
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// ContentSelectors returns the content root selectors for a platform
func ContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGitHubProfile:
		return []string{
			"main",
			"[data-pjax-container]",
			"#user-repositories-list",
		}
	case PlatformGitHubRepo:
		return []string{
			"#readme article.markdown-body",
			"article.markdown-body",
			"#readme",
			"main",
		}
	case PlatformGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
		}
	case PlatformLever:
		return []string{
			".posting-page",
			".posting-description",
			".content",
		}
	case PlatformWorkday:
		return []string{
			"[data-automation-id='jobDescription']",
			".job-description",
		}
	default:
		return DefaultTextSelectors()
	}
}

// NoiseSelectors returns elements removed before extraction for a platform
func NoiseSelectors(platform Platform) []string {
	switch platform {
	case PlatformGitHubProfile, PlatformGitHubRepo:
		return []string{
			".js-header-wrapper",
			".footer",
			".Layout-sidebar .js-profile-editable-replace form",
			"[data-testid='contribution-graph']",
			".js-yearly-contributions",
			".flash",
			"include-fragment",
		}
	case PlatformGreenhouse, PlatformLever, PlatformWorkday:
		return []string{
			"#application-form",
			".application-form",
			".apply-button-container",
			".eeo-statement",
			".voluntary-disclosure",
			".social-share",
			".cookie-consent",
		}
	default:
		return nil
	}
}
