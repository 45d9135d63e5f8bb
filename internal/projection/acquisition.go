package projection

import (
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// AcquisitionResult holds the cash required at purchase and how it is funded.
type AcquisitionResult struct {
	NotaryFee         float64
	TotalCost         float64
	PrincipalFinanced float64
	Overfunded        bool
	CashInvested      float64
}

// AggregateAcquisition computes the total acquisition cost and the amount
// left to finance once the down payment is applied. A down payment larger
// than the total is allowed: the principal is clamped to zero and Overfunded
// is set so the excess is not counted as invested cash.
func AggregateAcquisition(acq Acquisition, downPayment float64) AcquisitionResult {
	var result AcquisitionResult
	result.NotaryFee = mathutil.ApplyPercentage(acq.AgencyPrice, acq.NotaryFeePercent)
	result.TotalCost = acq.AgencyPrice + acq.AgencyFee + result.NotaryFee + acq.RenovationCost - acq.FurnitureDiscount

	remaining := result.TotalCost - downPayment
	if remaining < 0 {
		result.Overfunded = true
		remaining = 0
	}
	result.PrincipalFinanced = remaining

	invested := downPayment + acq.AgencyFee + result.NotaryFee + acq.RenovationCost
	result.CashInvested = mathutil.Max(0, mathutil.Min(invested, result.TotalCost))
	return result
}

// RenovationProgress returns the share of the estimated renovation already done.
func RenovationProgress(acq Acquisition) float64 {
	if acq.RenovationEstimated <= 0 {
		return 0
	}
	done := acq.RenovationEstimated - acq.RenovationRemaining
	return mathutil.ClampPercent(mathutil.CalculatePercentage(done, acq.RenovationEstimated))
}
