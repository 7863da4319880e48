package types

import "fmt"

// RiskCategory represents the business domain a risk belongs to
type RiskCategory string

const (
	RiskCategoryStrategic    RiskCategory = "STRATEGIC"
	RiskCategoryOperational  RiskCategory = "OPERATIONAL"
	RiskCategoryFinancial    RiskCategory = "FINANCIAL"
	RiskCategoryCompliance   RiskCategory = "COMPLIANCE"
	RiskCategoryTechnology   RiskCategory = "TECHNOLOGY"
	RiskCategoryReputational RiskCategory = "REPUTATIONAL"
)

// AllRiskCategories returns all valid risk categories
func AllRiskCategories() []RiskCategory {
	return []RiskCategory{
		RiskCategoryStrategic,
		RiskCategoryOperational,
		RiskCategoryFinancial,
		RiskCategoryCompliance,
		RiskCategoryTechnology,
		RiskCategoryReputational,
	}
}

// IsValid checks if the risk category is valid
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskCategoryStrategic,
		RiskCategoryOperational,
		RiskCategoryFinancial,
		RiskCategoryCompliance,
		RiskCategoryTechnology,
		RiskCategoryReputational:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk category
func (c RiskCategory) String() string {
	return string(c)
}

// ParseRiskCategory parses a string into a RiskCategory
func ParseRiskCategory(s string) (RiskCategory, error) {
	category := RiskCategory(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid risk category: %s", s)
	}
	return category, nil
}
