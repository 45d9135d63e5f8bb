package projection

import (
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/period"
)

// OutflowResult is the annualized operating outflow of a property.
type OutflowResult struct {
	Breakdown OutflowBreakdown
	Annual    float64
	Monthly   float64
}

// AggregateOutflows sums the recurring non-financing costs in annual terms.
// Tenant reimbursement of recoverable charges is counted on the revenue side
// only.
func AggregateOutflows(charges Charges, borrowerInsuranceMonthly float64) (OutflowResult, error) {
	var result OutflowResult
	b := &result.Breakdown

	paired := []struct {
		name   string
		charge period.Charge
		dest   *float64
	}{
		{"propertyTax", charges.PropertyTax, &b.PropertyTax},
		{"condoFees", charges.CondoFees, &b.CondoFees},
		{"ownerInsurance", charges.OwnerInsurance, &b.OwnerInsurance},
	}
	for _, p := range paired {
		annual, err := p.charge.Annualize()
		if err != nil {
			return OutflowResult{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dest = annual
	}

	b.Utilities = charges.Utilities
	b.Internet = charges.Internet
	b.MaintenanceReserve = charges.MaintenanceReserve
	b.RecoverableCharges = charges.RecoverableCharges
	b.OtherOutflow = charges.OtherOutflow
	b.BorrowerInsurance = borrowerInsuranceMonthly * constants.MonthsPerYear

	result.Annual = b.PropertyTax + b.CondoFees + b.OwnerInsurance +
		b.Utilities + b.Internet + b.MaintenanceReserve + b.RecoverableCharges +
		b.OtherOutflow + b.BorrowerInsurance
	result.Monthly = result.Annual / constants.MonthsPerYear
	return result, nil
}
