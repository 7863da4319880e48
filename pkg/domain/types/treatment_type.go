package types

import "fmt"

// TreatmentType represents the strategy a treatment applies to its risk
type TreatmentType string

const (
	TreatmentTypeMitigate TreatmentType = "MITIGATE"
	TreatmentTypeAccept   TreatmentType = "ACCEPT"
	TreatmentTypeTransfer TreatmentType = "TRANSFER"
	TreatmentTypeAvoid    TreatmentType = "AVOID"
)

// AllTreatmentTypes returns all valid treatment types
func AllTreatmentTypes() []TreatmentType {
	return []TreatmentType{
		TreatmentTypeMitigate,
		TreatmentTypeAccept,
		TreatmentTypeTransfer,
		TreatmentTypeAvoid,
	}
}

// IsValid checks if the treatment type is valid
func (t TreatmentType) IsValid() bool {
	switch t {
	case TreatmentTypeMitigate,
		TreatmentTypeAccept,
		TreatmentTypeTransfer,
		TreatmentTypeAvoid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment type
func (t TreatmentType) String() string {
	return string(t)
}

// ParseTreatmentType parses a string into a TreatmentType
func ParseTreatmentType(s string) (TreatmentType, error) {
	treatmentType := TreatmentType(s)
	if !treatmentType.IsValid() {
		return "", fmt.Errorf("invalid treatment type: %s", s)
	}
	return treatmentType, nil
}
