package types

import "fmt"

// TreatmentStatus represents the execution state of a risk treatment
type TreatmentStatus string

const (
	TreatmentStatusPlanned     TreatmentStatus = "PLANNED"
	TreatmentStatusInProgress  TreatmentStatus = "IN_PROGRESS"
	TreatmentStatusImplemented TreatmentStatus = "IMPLEMENTED"
	TreatmentStatusVerified    TreatmentStatus = "VERIFIED"
	TreatmentStatusIneffective TreatmentStatus = "INEFFECTIVE"
	TreatmentStatusCancelled   TreatmentStatus = "CANCELLED"
)

// AllTreatmentStatuses returns all valid treatment statuses
func AllTreatmentStatuses() []TreatmentStatus {
	return []TreatmentStatus{
		TreatmentStatusPlanned,
		TreatmentStatusInProgress,
		TreatmentStatusImplemented,
		TreatmentStatusVerified,
		TreatmentStatusIneffective,
		TreatmentStatusCancelled,
	}
}

// IsValid checks if the treatment status is valid
func (s TreatmentStatus) IsValid() bool {
	switch s {
	case TreatmentStatusPlanned,
		TreatmentStatusInProgress,
		TreatmentStatusImplemented,
		TreatmentStatusVerified,
		TreatmentStatusIneffective,
		TreatmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Progress returns the fixed completion percentage for the treatment status
func (s TreatmentStatus) Progress() int {
	switch s {
	case TreatmentStatusPlanned:
		return 10
	case TreatmentStatusInProgress:
		return 50
	case TreatmentStatusImplemented:
		return 90
	case TreatmentStatusVerified:
		return 100
	case TreatmentStatusIneffective:
		return 0
	case TreatmentStatusCancelled:
		return 0
	default:
		return 0
	}
}

// IsCompleted checks if the status marks the work as done (sets the completion date)
func (s TreatmentStatus) IsCompleted() bool {
	return s == TreatmentStatusImplemented || s == TreatmentStatusVerified
}

// ExcludesOverdue checks if the status exempts the treatment from overdue checks
func (s TreatmentStatus) ExcludesOverdue() bool {
	switch s {
	case TreatmentStatusImplemented,
		TreatmentStatusVerified,
		TreatmentStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment status
func (s TreatmentStatus) String() string {
	return string(s)
}

// ParseTreatmentStatus parses a string into a TreatmentStatus
func ParseTreatmentStatus(s string) (TreatmentStatus, error) {
	status := TreatmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid treatment status: %s", s)
	}
	return status, nil
}
