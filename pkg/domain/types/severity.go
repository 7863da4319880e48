package types

import "fmt"

// Severity represents the severity band derived from a risk score
type Severity string

const (
	SeverityCritical   Severity = "CRITICAL"
	SeverityHigh       Severity = "HIGH"
	SeverityMedium     Severity = "MEDIUM"
	SeverityLow        Severity = "LOW"
	SeverityNegligible Severity = "NEGLIGIBLE"
)

// AllSeverities returns all valid severities in descending order
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityNegligible,
	}
}

// SeverityForScore returns the severity band for a risk score (1-25)
func SeverityForScore(score int) Severity {
	switch {
	case score >= 20:
		return SeverityCritical
	case score >= 15:
		return SeverityHigh
	case score >= 8:
		return SeverityMedium
	case score >= 3:
		return SeverityLow
	default:
		return SeverityNegligible
	}
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityNegligible:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the severity, higher is more severe.
// Invalid severities rank below NEGLIGIBLE.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityNegligible:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}
