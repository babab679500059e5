// Package similarity provides the pure scoring primitives used by the verification pipelines.
// Every function is total: malformed input degrades to a neutral or zero score.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minTokenLength is the shortest token counted by Tokenize, exclusive
const minTokenLength = 2

// NeutralTextScore is used when a text field is missing on either side
const NeutralTextScore = 0.3

// companySuffixes are dropped before comparing employer names
var companySuffixes = map[string]bool{
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"llc":          true,
	"ltd":          true,
	"limited":      true,
	"co":           true,
	"company":      true,
	"gmbh":         true,
	"plc":          true,
	"group":        true,
}

// normalizeText lowercases s and drops every rune that is not a letter, digit or whitespace
func normalizeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// Tokenize returns the set of normalized tokens longer than two characters
func Tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalizeText(s)) {
		if utf8.RuneCountInString(tok) > minTokenLength {
			set[tok] = struct{}{}
		}
	}
	return set
}

// JaccardSets computes |A∩B| / |A∪B|, returning 0 when both sets are empty
func JaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := intersectionSize(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Jaccard is the token-set similarity of two strings
func Jaccard(a, b string) float64 {
	return JaccardSets(Tokenize(a), Tokenize(b))
}

// OverlapCoefficient computes |A∩B| / min(|A|,|B|).
// It suits comparisons of texts with very different lengths.
func OverlapCoefficient(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	smaller := min(len(ta), len(tb))
	if smaller == 0 {
		return 0
	}
	return float64(intersectionSize(ta, tb)) / float64(smaller)
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

// FuzzyRatio returns 1 - editDistance/maxLen over the normalized strings.
// Two empty strings score 0.
func FuzzyRatio(a, b string) float64 {
	na := strings.Join(strings.Fields(normalizeText(a)), " ")
	nb := strings.Join(strings.Fields(normalizeText(b)), " ")
	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return Clamp01(1 - float64(dist)/float64(maxLen))
}

// stripCompanySuffixes removes legal-form tokens such as "Inc" or "Corporation"
func stripCompanySuffixes(name string) string {
	fields := strings.Fields(normalizeText(name))
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if !companySuffixes[f] {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}

// CompanySimilarity compares employer names, tolerating legal-form suffixes
func CompanySimilarity(a, b string) float64 {
	raw := Jaccard(a, b)
	sa, sb := stripCompanySuffixes(a), stripCompanySuffixes(b)
	if sa == "" || sb == "" {
		return raw
	}
	stripped := Jaccard(sa, sb)
	if sa == sb {
		stripped = 1
	}
	return max(raw, stripped, FuzzyRatio(sa, sb))
}

// TextScore compares two optional texts with fn, returning NeutralTextScore if either is blank
func TextScore(a, b string, fn func(string, string) float64) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return NeutralTextScore
	}
	return Clamp01(fn(a, b))
}
