package model

import "github.com/google/uuid"

// RiskID is a UUID-based identifier for Risk
type RiskID string

// NewRiskID generates a new UUID v4 RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.New().String())
}

// String returns the string representation of RiskID
func (id RiskID) String() string {
	return string(id)
}

// TreatmentID is a UUID-based identifier for Treatment
type TreatmentID string

// NewTreatmentID generates a new UUID v4 TreatmentID
func NewTreatmentID() TreatmentID {
	return TreatmentID(uuid.New().String())
}

// String returns the string representation of TreatmentID
func (id TreatmentID) String() string {
	return string(id)
}
