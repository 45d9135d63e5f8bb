package projection

import (
	"testing"

	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"github.com/iwvelando/rental-projection/pkg/period"
)

// longTermInput finances 200000 at 3% over 20 years with 300 of monthly
// outflows and 850 of monthly rent including charges.
func longTermInput() Input {
	return Input{
		Mode: LongTermRental,
		Acquisition: Acquisition{
			AgencyPrice:      200000,
			NotaryFeePercent: 8,
			RenovationCost:   4000,
		},
		Financing: Financing{
			LoanRatePercent: 3,
			LoanTermYears:   20,
			DownPayment:     20000,
		},
		Charges: Charges{
			PropertyTax:    period.Charge{Amount: 1200, Period: period.Annual},
			CondoFees:      period.Charge{Amount: 100, Period: period.Monthly},
			OwnerInsurance: period.Charge{Amount: 240, Period: period.Annual},
		},
		Taxation: Taxation{
			MarginalRatePercent:       30,
			SocialContributionPercent: 17.2,
		},
		FlatRent: &FlatRent{
			GrossRentExcludingCharges: 800,
			RecoverableChargesBilled:  50,
		},
	}
}

func shortTermInput() Input {
	in := longTermInput()
	in.Mode = ShortTermRental
	in.FlatRent = nil
	in.Occupancy = &Occupancy{
		NightlyPrice:                100,
		TargetNightsPerYear:         200,
		AverageStayLengthNights:     3,
		TouristTaxPerNightPerGuest:  1.5,
		AverageGuests:               2,
		PlatformFeePercent:          15,
		ManagementFeePercent:        20,
		ChannelManagerMonthlyFee:    10,
		CleaningCostPerStay:         30,
		AvailabilityRatePercent:     90,
		AverageOccupancyRatePercent: 60,
	}
	return in
}

func buyResellInput() Input {
	in := longTermInput()
	in.Mode = BuyResell
	in.FlatRent = nil
	return in
}

func newTestEngine(t *testing.T, policy Policy) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, policy)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func assertClose(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, want, tolerance) {
		t.Errorf("%s = %.4f, want %.4f (tolerance %.4f)", name, got, want, tolerance)
	}
}
