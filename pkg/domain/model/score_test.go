package model_test

import (
	"errors"
	"testing"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestNewRiskScore(t *testing.T) {
	tests := []struct {
		name         string
		impact       types.Impact
		likelihood   types.Likelihood
		wantValue    int
		wantSeverity types.Severity
	}{
		{
			name:         "maximum pair is critical",
			impact:       types.ImpactSevere,
			likelihood:   types.LikelihoodAlmostCertain,
			wantValue:    25,
			wantSeverity: types.SeverityCritical,
		},
		{
			name:         "minimum pair is negligible",
			impact:       types.ImpactInsignificant,
			likelihood:   types.LikelihoodRare,
			wantValue:    1,
			wantSeverity: types.SeverityNegligible,
		},
		{
			name:         "moderate and possible is medium",
			impact:       types.ImpactModerate,
			likelihood:   types.LikelihoodPossible,
			wantValue:    9,
			wantSeverity: types.SeverityMedium,
		},
		{
			name:         "critical lower bound",
			impact:       types.ImpactMajor,
			likelihood:   types.LikelihoodAlmostCertain,
			wantValue:    20,
			wantSeverity: types.SeverityCritical,
		},
		{
			name:         "high lower bound",
			impact:       types.ImpactModerate,
			likelihood:   types.LikelihoodAlmostCertain,
			wantValue:    15,
			wantSeverity: types.SeverityHigh,
		},
		{
			name:         "low band",
			impact:       types.ImpactMinor,
			likelihood:   types.LikelihoodPossible,
			wantValue:    6,
			wantSeverity: types.SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := model.NewRiskScore(tt.impact, tt.likelihood)
			if err != nil {
				t.Fatalf("NewRiskScore() unexpected error: %v", err)
			}
			if score.Value() != tt.wantValue {
				t.Errorf("Value() = %v, want %v", score.Value(), tt.wantValue)
			}
			if score.Severity() != tt.wantSeverity {
				t.Errorf("Severity() = %v, want %v", score.Severity(), tt.wantSeverity)
			}
		})
	}
}

func TestNewRiskScore_InvalidLevels(t *testing.T) {
	if _, err := model.NewRiskScore(types.Impact("catastrophic"), types.LikelihoodRare); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("invalid impact: error = %v, want ErrInvalidField", err)
	}
	if _, err := model.NewRiskScore(types.ImpactMajor, types.Likelihood("often")); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("invalid likelihood: error = %v, want ErrInvalidField", err)
	}
}

func TestNewRiskScore_Deterministic(t *testing.T) {
	// The same pair always yields the same score and band
	for _, impact := range types.AllImpacts() {
		for _, likelihood := range types.AllLikelihoods() {
			first, err := model.NewRiskScore(impact, likelihood)
			if err != nil {
				t.Fatalf("NewRiskScore(%v, %v) unexpected error: %v", impact, likelihood, err)
			}
			second, err := model.NewRiskScore(impact, likelihood)
			if err != nil {
				t.Fatalf("NewRiskScore(%v, %v) unexpected error: %v", impact, likelihood, err)
			}
			if first != second {
				t.Errorf("NewRiskScore(%v, %v) is not deterministic: %v != %v", impact, likelihood, first, second)
			}
			if want := impact.Score() * likelihood.Score(); first.Value() != want {
				t.Errorf("Value() = %v, want %v for (%v, %v)", first.Value(), want, impact, likelihood)
			}
		}
	}
}

func TestRiskScoreFromValue(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"lower bound", 1, false},
		{"upper bound", 25, false},
		{"mid range", 12, false},
		{"zero rejected", 0, true},
		{"above range rejected", 26, true},
		{"negative rejected", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := model.RiskScoreFromValue(tt.value)
			if tt.wantErr {
				if !errors.Is(err, model.ErrInvalidField) {
					t.Errorf("RiskScoreFromValue(%d) error = %v, want ErrInvalidField", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RiskScoreFromValue(%d) unexpected error: %v", tt.value, err)
			}
			if score.Value() != tt.value {
				t.Errorf("Value() = %v, want %v", score.Value(), tt.value)
			}
		})
	}
}

func TestRiskScoreFromValue_BandsMatchCalculation(t *testing.T) {
	// Both constructors must band identically for every reachable score
	for _, impact := range types.AllImpacts() {
		for _, likelihood := range types.AllLikelihoods() {
			calculated, err := model.NewRiskScore(impact, likelihood)
			if err != nil {
				t.Fatalf("NewRiskScore(%v, %v) unexpected error: %v", impact, likelihood, err)
			}
			rebuilt, err := model.RiskScoreFromValue(calculated.Value())
			if err != nil {
				t.Fatalf("RiskScoreFromValue(%d) unexpected error: %v", calculated.Value(), err)
			}
			if rebuilt.Severity() != calculated.Severity() {
				t.Errorf("severity mismatch for score %d: %v != %v",
					calculated.Value(), rebuilt.Severity(), calculated.Severity())
			}
		}
	}
}
