package types

import "fmt"

// Likelihood represents the likelihood level of a risk on a five-point ordinal scale
type Likelihood string

const (
	LikelihoodRare          Likelihood = "RARE"
	LikelihoodUnlikely      Likelihood = "UNLIKELY"
	LikelihoodPossible      Likelihood = "POSSIBLE"
	LikelihoodLikely        Likelihood = "LIKELY"
	LikelihoodAlmostCertain Likelihood = "ALMOST_CERTAIN"
)

// AllLikelihoods returns all valid likelihood levels in ascending order
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain,
	}
}

// IsValid checks if the likelihood level is valid
func (l Likelihood) IsValid() bool {
	switch l {
	case LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain:
		return true
	default:
		return false
	}
}

// Score returns the numeric weight of the likelihood level (1-5)
func (l Likelihood) Score() int {
	switch l {
	case LikelihoodRare:
		return 1
	case LikelihoodUnlikely:
		return 2
	case LikelihoodPossible:
		return 3
	case LikelihoodLikely:
		return 4
	case LikelihoodAlmostCertain:
		return 5
	default:
		return 0
	}
}

// String returns the string representation of the likelihood level
func (l Likelihood) String() string {
	return string(l)
}

// ParseLikelihood parses a string into a Likelihood
func ParseLikelihood(s string) (Likelihood, error) {
	likelihood := Likelihood(s)
	if !likelihood.IsValid() {
		return "", fmt.Errorf("invalid likelihood level: %s", s)
	}
	return likelihood, nil
}
