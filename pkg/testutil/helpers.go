// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/output"
	"github.com/iwvelando/rental-projection/pkg/period"
)

// FindResult finds a property result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []output.Result, name string) *output.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// LongTermInput returns a financed long-term rental: a 200 000 purchase with
// 8% notary fees and 4 000 of works, 20 000 down, 3% over 20 years and
// 2 640 of yearly outflows against 850 of monthly rent.
func LongTermInput() projection.Input {
	return projection.Input{
		Mode: projection.LongTermRental,
		Acquisition: projection.Acquisition{
			AgencyPrice:      200000,
			NotaryFeePercent: 8,
			RenovationCost:   4000,
		},
		Financing: projection.Financing{LoanRatePercent: 3, LoanTermYears: 20, DownPayment: 20000},
		Charges: projection.Charges{
			PropertyTax:    period.Charge{Amount: 1200, Period: period.Annual},
			CondoFees:      period.Charge{Amount: 100, Period: period.Monthly},
			OwnerInsurance: period.Charge{Amount: 240, Period: period.Annual},
		},
		Taxation: projection.Taxation{MarginalRatePercent: 30, SocialContributionPercent: 17.2},
		FlatRent: &projection.FlatRent{GrossRentExcludingCharges: 800, RecoverableChargesBilled: 50},
	}
}
