package types

import "fmt"

// Impact represents the impact level of a risk on a five-point ordinal scale
type Impact string

const (
	ImpactInsignificant Impact = "INSIGNIFICANT"
	ImpactMinor         Impact = "MINOR"
	ImpactModerate      Impact = "MODERATE"
	ImpactMajor         Impact = "MAJOR"
	ImpactSevere        Impact = "SEVERE"
)

// AllImpacts returns all valid impact levels in ascending order
func AllImpacts() []Impact {
	return []Impact{
		ImpactInsignificant,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere,
	}
}

// IsValid checks if the impact level is valid
func (i Impact) IsValid() bool {
	switch i {
	case ImpactInsignificant,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere:
		return true
	default:
		return false
	}
}

// Score returns the numeric weight of the impact level (1-5)
func (i Impact) Score() int {
	switch i {
	case ImpactInsignificant:
		return 1
	case ImpactMinor:
		return 2
	case ImpactModerate:
		return 3
	case ImpactMajor:
		return 4
	case ImpactSevere:
		return 5
	default:
		return 0
	}
}

// String returns the string representation of the impact level
func (i Impact) String() string {
	return string(i)
}

// ParseImpact parses a string into an Impact
func ParseImpact(s string) (Impact, error) {
	impact := Impact(s)
	if !impact.IsValid() {
		return "", fmt.Errorf("invalid impact level: %s", s)
	}
	return impact, nil
}
