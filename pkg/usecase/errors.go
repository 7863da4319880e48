package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRiskNotFound      = errors.New("risk not found")
	ErrTreatmentNotFound = errors.New("treatment not found")
)

// Context keys for error values
const (
	RiskIDKey      = "risk_id"
	TreatmentIDKey = "treatment_id"
)
