package projection

import (
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/loans"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// TaxResult is the estimated yearly tax on the rental result.
type TaxResult struct {
	DeductibleInterest   float64
	TaxableResultAnnual  float64
	TaxableResultMonthly float64
	TaxAnnual            float64
	TaxMonthly           float64
}

// DeductibleInterest returns the loan interest subtracted from the taxable
// result under the given policy. Principal repayment is never deductible.
func DeductibleInterest(deduction InterestDeduction, schedule []loans.Payment, totalInterest float64, termYears int) float64 {
	switch deduction {
	case DeductAverageInterest:
		if termYears <= 0 {
			return 0
		}
		return totalInterest / float64(termYears)
	case DeductNoInterest:
		return 0
	default:
		return loans.InterestForYear(schedule, 1)
	}
}

// EstimateTax computes the taxable result and the tax owed on it. A
// non-positive result owes nothing and no loss is carried forward.
func EstimateTax(grossRevenueAnnual, outflowAnnual, deductibleInterest float64, taxation Taxation) TaxResult {
	var result TaxResult
	result.DeductibleInterest = deductibleInterest
	result.TaxableResultAnnual = grossRevenueAnnual - outflowAnnual - deductibleInterest
	result.TaxableResultMonthly = result.TaxableResultAnnual / constants.MonthsPerYear

	if result.TaxableResultAnnual > 0 {
		rate := taxation.MarginalRatePercent + taxation.SocialContributionPercent
		result.TaxAnnual = mathutil.ApplyPercentage(result.TaxableResultAnnual, rate)
	}
	result.TaxMonthly = result.TaxAnnual / constants.MonthsPerYear
	return result
}
