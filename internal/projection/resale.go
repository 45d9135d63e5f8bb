package projection

import (
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/loans"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// ProjectResale estimates the exit of a buy-resell operation held for
// resale.HoldingYears. The recurring cash-flow figures of the output are
// unaffected.
func ProjectResale(resale Resale, acquisitionCost, outflowAnnual float64, schedule []loans.Payment) *ResaleDetail {
	months := resale.HoldingYears * constants.MonthsPerYear

	interest := 0.0
	for _, payment := range schedule {
		if payment.Period <= months {
			interest += payment.Interest
		}
	}

	detail := &ResaleDetail{
		HoldingYears:       resale.HoldingYears,
		ResalePrice:        resale.ExpectedResalePrice,
		ResaleCosts:        mathutil.ApplyPercentage(resale.ExpectedResalePrice, resale.ResaleCostPercent),
		RemainingPrincipal: loans.RemainingPrincipalAfter(schedule, months),
		HoldingCosts:       outflowAnnual*float64(resale.HoldingYears) + interest,
	}
	detail.NetProceeds = detail.ResalePrice - detail.ResaleCosts - detail.RemainingPrincipal
	detail.CapitalGain = detail.ResalePrice - detail.ResaleCosts - acquisitionCost
	detail.ProjectedProfit = detail.CapitalGain - detail.HoldingCosts
	return detail
}
