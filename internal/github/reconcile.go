package github

import (
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-verifier/internal/similarity"
	"github.com/jonathan/resume-verifier/internal/types"
)

// WeakMatchThreshold is the lowest confidence at which a MATCHED mapping is kept
const WeakMatchThreshold = 0.5

// FilterRepos drops candidates owned by someone other than username and duplicate names.
// URLs are made absolute; a URL with no recognizable owner is rebuilt from username and name.
// Order is preserved.
func FilterRepos(username string, repos []types.RepoCandidate) []types.RepoCandidate {
	out := make([]types.RepoCandidate, 0, len(repos))
	seen := make(map[string]bool, len(repos))
	for _, r := range repos {
		r.Name = strings.TrimSpace(r.Name)
		r.URL = strings.TrimSpace(r.URL)
		if r.Name == "" {
			continue
		}
		owner := repoOwner(r.URL)
		if owner != "" && !strings.EqualFold(owner, username) {
			continue
		}
		if owner == "" {
			r.URL = BuildRepoURL(username, r.Name, "")
		} else {
			r.URL = canonicalRepoURL(r.URL)
		}

		key := strings.ToLower(r.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if r.Topics == nil {
			r.Topics = []string{}
		}
		out = append(out, r)
	}
	return out
}

// NotFound returns a NOT_FOUND mapping for every project
func NotFound(projects []types.Project, reason string) []types.ProjectMapping {
	out := make([]types.ProjectMapping, len(projects))
	for i, p := range projects {
		out[i] = types.ProjectMapping{ProjectTitle: p.Title, Status: types.StatusNotFound, Reasoning: reason}
	}
	return out
}

// Reconcile returns exactly one mapping per project, in project order. Model mappings are
// looked up by case-insensitive title; mappings that are missing, weak or point at a repository
// outside repos become NOT_FOUND.
func Reconcile(username string, projects []types.Project, repos []types.RepoCandidate, mappings []types.ProjectMapping) []types.ProjectMapping {
	byTitle := make(map[string]types.ProjectMapping, len(mappings))
	for _, m := range mappings {
		key := titleKey(m.ProjectTitle)
		if _, dup := byTitle[key]; !dup {
			byTitle[key] = m
		}
	}
	byName := make(map[string]types.RepoCandidate, len(repos))
	byURL := make(map[string]types.RepoCandidate, len(repos))
	for _, r := range repos {
		byName[strings.ToLower(r.Name)] = r
		byURL[strings.ToLower(strings.TrimSuffix(r.URL, "/"))] = r
	}

	out := make([]types.ProjectMapping, len(projects))
	for i, p := range projects {
		m, ok := byTitle[titleKey(p.Title)]
		if !ok {
			out[i] = types.ProjectMapping{ProjectTitle: p.Title, Status: types.StatusNotFound, Reasoning: "No mapping returned for project"}
			continue
		}

		m.ProjectTitle = p.Title
		m.MatchConfidence = similarity.Clamp01(m.MatchConfidence)
		m.RepoName = strings.TrimSpace(m.RepoName)
		m.Status = types.MatchStatus(strings.ToUpper(strings.TrimSpace(string(m.Status))))
		if !types.ValidMappingStatus(m.Status) {
			out[i] = demote(m, "unknown mapping status "+strconv.Quote(string(m.Status)))
			continue
		}
		if m.Status != types.StatusMatched {
			m.Status = types.StatusNotFound
			m.RepoURL = ""
			out[i] = m
			continue
		}

		repo, known := byName[strings.ToLower(m.RepoName)]
		if !known && m.RepoURL != "" {
			repo, known = byURL[strings.ToLower(strings.TrimSuffix(canonicalRepoURL(m.RepoURL), "/"))]
		}
		switch {
		case !known:
			m = demote(m, "repository is not among the profile's repositories")
		case m.MatchConfidence < WeakMatchThreshold:
			m = demote(m, "match confidence below threshold")
		default:
			m.RepoName = repo.Name
			m.RepoURL = BuildRepoURL(username, repo.Name, repo.URL)
		}
		out[i] = m
	}
	return out
}

func demote(m types.ProjectMapping, reason string) types.ProjectMapping {
	m.Status = types.StatusNotFound
	m.RepoURL = ""
	if m.Reasoning == "" {
		m.Reasoning = reason
	} else {
		m.Reasoning = strings.TrimRight(m.Reasoning, ". ") + " (" + reason + ")"
	}
	return m
}

func titleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// OverallScore is the rounded mean alignment over MATCHED results, or 0 when there are none
func OverallScore(results []types.ProjectVerification) int {
	total, n := 0, 0
	for _, r := range results {
		if r.Status == types.StatusMatched {
			total += r.AlignmentScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}
