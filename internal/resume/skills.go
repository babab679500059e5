package resume

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":      "Go",
	"go lang":     "Go",
	"javascript":  "JavaScript",
	"js":          "JavaScript",
	"typescript":  "TypeScript",
	"ts":          "TypeScript",
	"k8s":         "Kubernetes",
	"kubernetes":  "Kubernetes",
	"react.js":    "React",
	"reactjs":     "React",
	"vue.js":      "Vue",
	"vuejs":       "Vue",
	"node.js":     "Node.js",
	"nodejs":      "Node.js",
	"node":        "Node.js",
	"postgres":    "PostgreSQL",
	"postgresql":  "PostgreSQL",
	"psql":        "PostgreSQL",
	"mongo":       "MongoDB",
	"mongodb":     "MongoDB",
	"aws":         "AWS",
	"gcp":         "GCP",
	"c#":          "C#",
	"csharp":      "C#",
	"c++":         "C++",
	"cpp":         "C++",
	"next.js":     "Next.js",
	"nextjs":      "Next.js",
	"tailwind":    "Tailwind CSS",
	"tailwindcss": "Tailwind CSS",
	"ci/cd":       "CI/CD",
	"graphql":     "GraphQL",

	"amazon web services": "AWS",
	"google cloud":        "GCP",
}

// acronymMaxLen is the longest all-caps word kept as an acronym
const acronymMaxLen = 4

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	singleWord := !strings.Contains(normalized, " ")

	// all caps: keep short acronyms (SQL, GCP), title-case the rest
	if normalized == strings.ToUpper(normalized) && normalized != lower {
		if singleWord && len(normalized) > acronymMaxLen {
			return upperFirst(lower)
		}
		return normalized
	}

	// mixed case is intentional
	if normalized != lower {
		return normalized
	}

	if singleWord {
		return upperFirst(normalized)
	}
	return normalized
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SkillKey is the comparison key of a skill: its canonical name lower-cased
func SkillKey(skill string) string {
	return strings.ToLower(NormalizeSkillName(skill))
}

// NormalizeSkills canonicalizes skill names and drops empty and duplicate entries, keeping first occurrences
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		name := NormalizeSkillName(s)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// SkillSet returns the comparison keys of skills
func SkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if key := SkillKey(s); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
