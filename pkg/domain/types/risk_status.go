package types

import "fmt"

// RiskStatus represents the lifecycle state of a risk
type RiskStatus string

const (
	RiskStatusIdentified  RiskStatus = "IDENTIFIED"
	RiskStatusAssessed    RiskStatus = "ASSESSED"
	RiskStatusMitigating  RiskStatus = "MITIGATING"
	RiskStatusAccepted    RiskStatus = "ACCEPTED"
	RiskStatusTransferred RiskStatus = "TRANSFERRED"
	RiskStatusAvoided     RiskStatus = "AVOIDED"
	RiskStatusClosed      RiskStatus = "CLOSED"
)

// AllRiskStatuses returns all valid risk statuses
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusIdentified,
		RiskStatusAssessed,
		RiskStatusMitigating,
		RiskStatusAccepted,
		RiskStatusTransferred,
		RiskStatusAvoided,
		RiskStatusClosed,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusIdentified,
		RiskStatusAssessed,
		RiskStatusMitigating,
		RiskStatusAccepted,
		RiskStatusTransferred,
		RiskStatusAvoided,
		RiskStatusClosed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
