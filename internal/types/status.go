// Package types provides type definitions for structured data used throughout the resume-verifier system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MatchStatus is the shared status vocabulary for matching and verification results.
type MatchStatus string

const (
	StatusMatched  MatchStatus = "MATCHED"
	StatusPartial  MatchStatus = "PARTIAL"
	StatusNotFound MatchStatus = "NOT_FOUND"
	StatusFailed   MatchStatus = "FAILED"
)

// String returns the wire form of the status
func (s MatchStatus) String() string {
	return string(s)
}

// ValidMappingStatus reports whether s is allowed on a ProjectMapping
func ValidMappingStatus(s MatchStatus) bool {
	return s == StatusMatched || s == StatusNotFound
}
