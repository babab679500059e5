package linkedin

import (
	"strings"

	"github.com/jonathan/resume-verifier/internal/similarity"
)

// EmailScore compares two email addresses: exact match, same domain with a similar local
// part, or merely similar local parts
func EmailScore(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	localA, domainA := splitEmail(a)
	localB, domainB := splitEmail(b)
	fuzzy := similarity.FuzzyRatio(localA, localB)

	switch {
	case domainA != "" && domainA == domainB:
		return 0.5 + 0.4*fuzzy
	case fuzzy >= 0.8:
		return 0.4
	default:
		return 0.1
	}
}

func splitEmail(email string) (local, domain string) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email, ""
	}
	return email[:at], email[at+1:]
}

// PhoneScore compares phone numbers on their digits, tiered by how long a common suffix is
func PhoneScore(a, b string) float64 {
	da, db := digits(a), digits(b)
	if len(da) >= 10 && len(db) >= 10 {
		if da[len(da)-10:] == db[len(db)-10:] {
			return 1.0
		}
	} else if da == db {
		return 1.0
	}

	switch {
	case suffixEqual(da, db, 4):
		return 0.8
	case suffixEqual(da, db, 3):
		return 0.5
	default:
		return 0.1
	}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func suffixEqual(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return a[len(a)-n:] == b[len(b)-n:]
}
