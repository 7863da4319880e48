package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// RiskScore is the product of impact and likelihood weights with its severity
// band. Values are immutable and always range-checked on construction.
type RiskScore struct {
	value    int
	severity types.Severity
}

// NewRiskScore calculates a risk score from an impact and likelihood pair
func NewRiskScore(impact types.Impact, likelihood types.Likelihood) (RiskScore, error) {
	if !impact.IsValid() {
		return RiskScore{}, goerr.Wrap(ErrInvalidField, "unknown impact level",
			goerr.V(FieldKey, "impact"), goerr.V(ValueKey, impact))
	}
	if !likelihood.IsValid() {
		return RiskScore{}, goerr.Wrap(ErrInvalidField, "unknown likelihood level",
			goerr.V(FieldKey, "likelihood"), goerr.V(ValueKey, likelihood))
	}

	value := impact.Score() * likelihood.Score()
	return RiskScore{
		value:    value,
		severity: types.SeverityForScore(value),
	}, nil
}

// RiskScoreFromValue rebuilds a risk score from a pre-computed value in [1,25]
func RiskScoreFromValue(value int) (RiskScore, error) {
	if value < 1 || value > 25 {
		return RiskScore{}, goerr.Wrap(ErrInvalidField, "risk score must be between 1 and 25",
			goerr.V(FieldKey, "score"), goerr.V(ValueKey, value))
	}
	return RiskScore{
		value:    value,
		severity: types.SeverityForScore(value),
	}, nil
}

// Value returns the numeric score (1-25)
func (s RiskScore) Value() int {
	return s.value
}

// Severity returns the severity band of the score
func (s RiskScore) Severity() types.Severity {
	return s.severity
}
