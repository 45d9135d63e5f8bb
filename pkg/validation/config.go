// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/constants"
)

// ValidateLoanTerm warns about loans longer than lenders usually grant.
func ValidateLoanTerm(name string, termYears int) string {
	if termYears > constants.LongLoanTermWarningYears {
		return fmt.Sprintf("Property '%s' has a loan term of %d years, longer than %d years",
			name, termYears, constants.LongLoanTermWarningYears)
	}
	return ""
}

// ValidateRenovation warns when more renovation remains than was estimated.
func ValidateRenovation(name string, estimated, remaining float64) string {
	if remaining > estimated {
		return fmt.Sprintf("Property '%s' has %.2f of renovation remaining, more than the %.2f estimated",
			name, remaining, estimated)
	}
	return ""
}

// ValidateOccupancyTarget warns when the target nights cannot be reached and
// will be capped at capacity.
func ValidateOccupancyTarget(name string, target, capacity float64) string {
	if target > capacity {
		return fmt.Sprintf("Property '%s' targets %.1f nights but can only fill %.1f - revenue will use %.1f",
			name, target, capacity, capacity)
	}
	return ""
}

// ValidateDownPayment warns when the down payment covers the whole
// acquisition so nothing is financed.
func ValidateDownPayment(name string, downPayment, acquisitionCost float64) string {
	if acquisitionCost > 0 && downPayment >= acquisitionCost {
		return fmt.Sprintf("Property '%s' down payment %.2f covers the acquisition cost %.2f - no loan will be taken",
			name, downPayment, acquisitionCost)
	}
	return ""
}

// ConfigValidator validates every property of a portfolio.
type ConfigValidator struct {
	Properties []PropertyConfig
}

// PropertyConfig is the subset of a property the validator inspects.
type PropertyConfig struct {
	Name                string
	LoanTermYears       int
	RenovationEstimated float64
	RenovationRemaining float64
	DownPayment         float64
	AcquisitionCost     float64
	HasOccupancy        bool
	TargetNights        float64
	CapacityNights      float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string
	for _, property := range cv.Properties {
		checks := []string{
			ValidateLoanTerm(property.Name, property.LoanTermYears),
			ValidateRenovation(property.Name, property.RenovationEstimated, property.RenovationRemaining),
			ValidateDownPayment(property.Name, property.DownPayment, property.AcquisitionCost),
		}
		if property.HasOccupancy {
			checks = append(checks, ValidateOccupancyTarget(property.Name, property.TargetNights, property.CapacityNights))
		}
		for _, warning := range checks {
			if warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}
	return warnings
}
