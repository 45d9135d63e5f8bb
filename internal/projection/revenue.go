package projection

import (
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// RevenueModel turns a mode's revenue record into recurring revenue.
type RevenueModel interface {
	Mode() Mode
	Project(policy Policy) RevenueResult
}

// RevenueResult is the recurring revenue of a model together with the
// detail record of the mode that produced it.
type RevenueResult struct {
	Monthly   float64
	Annual    float64
	FlatRent  *FlatRentDetail
	Occupancy *OccupancyDetail
}

// RevenueModel returns the model matching the input's mode. It fails when
// the populated revenue record does not match the mode.
func (in Input) RevenueModel() (RevenueModel, error) {
	switch in.Mode {
	case LongTermRental:
		if in.FlatRent == nil {
			return nil, fmt.Errorf("%w: %s requires a flat rent record", ErrInvalidInput, in.Mode)
		}
		if in.Occupancy != nil || in.Resale != nil {
			return nil, fmt.Errorf("%w: %s accepts only a flat rent record", ErrInvalidInput, in.Mode)
		}
		return *in.FlatRent, nil
	case ShortTermRental:
		if in.Occupancy == nil {
			return nil, fmt.Errorf("%w: %s requires an occupancy record", ErrInvalidInput, in.Mode)
		}
		if in.FlatRent != nil || in.Resale != nil {
			return nil, fmt.Errorf("%w: %s accepts only an occupancy record", ErrInvalidInput, in.Mode)
		}
		return *in.Occupancy, nil
	case BuyResell:
		if in.FlatRent != nil || in.Occupancy != nil {
			return nil, fmt.Errorf("%w: %s does not accept a rental revenue record", ErrInvalidInput, in.Mode)
		}
		return noRevenue{}, nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, in.Mode)
}

// Mode implements RevenueModel.
func (FlatRent) Mode() Mode { return LongTermRental }

// Project implements RevenueModel: rent and billed charges are both monthly.
func (f FlatRent) Project(Policy) RevenueResult {
	monthly := f.GrossRentExcludingCharges + f.RecoverableChargesBilled
	annual := monthly * constants.MonthsPerYear
	return RevenueResult{
		Monthly: monthly,
		Annual:  annual,
		FlatRent: &FlatRentDetail{
			RentExcludingChargesMonthly: f.GrossRentExcludingCharges,
			ChargesBilledMonthly:        f.RecoverableChargesBilled,
			RentIncludingChargesMonthly: monthly,
			RentIncludingChargesAnnual:  annual,
		},
	}
}

// Mode implements RevenueModel.
func (Occupancy) Mode() Mode { return ShortTermRental }

// CapacityNights is the number of nights the property can physically be
// occupied in a year given its availability and average occupancy.
func (o Occupancy) CapacityNights() float64 {
	return constants.DaysPerYear *
		(o.AvailabilityRatePercent / constants.PercentageMultiplier) *
		(o.AverageOccupancyRatePercent / constants.PercentageMultiplier)
}

// OccupiedNights caps the target nights at the capacity.
func (o Occupancy) OccupiedNights() float64 {
	return mathutil.Min(o.TargetNightsPerYear, o.CapacityNights())
}

// Project implements RevenueModel.
func (o Occupancy) Project(policy Policy) RevenueResult {
	capacity := o.CapacityNights()
	nights := o.OccupiedNights()
	stays := nights / mathutil.Max(1, o.AverageStayLengthNights)

	gross := nights * o.NightlyPrice
	touristTax := nights * o.TouristTaxPerNightPerGuest * o.AverageGuests
	platformFees := mathutil.ApplyPercentage(gross, o.PlatformFeePercent)
	managementFees := mathutil.ApplyPercentage(gross, o.ManagementFeePercent)
	perStay := o.CleaningCostPerStay + o.LaundryCostPerStay + o.SuppliesCostPerStay + o.OtherVariableCostPerStay
	variableCosts := stays * perStay
	channelManager := o.ChannelManagerMonthlyFee * constants.MonthsPerYear

	net := gross - platformFees - managementFees - variableCosts - channelManager

	retained := policy.TouristTax == TouristTaxRetained
	annual := net
	if retained {
		annual += touristTax
	}

	return RevenueResult{
		Monthly: annual / constants.MonthsPerYear,
		Annual:  annual,
		Occupancy: &OccupancyDetail{
			CapacityNights:      capacity,
			OccupiedNights:      nights,
			TargetCapped:        o.TargetNightsPerYear > capacity,
			Stays:               stays,
			GrossLodgingRevenue: gross,
			TouristTax:          touristTax,
			TouristTaxRetained:  retained,
			PlatformFees:        platformFees,
			ManagementFees:      managementFees,
			VariableCosts:       variableCosts,
			ChannelManagerFees:  channelManager,
			NetLodgingRevenue:   net,
		},
	}
}

// noRevenue is the buy-resell model.
type noRevenue struct{}

func (noRevenue) Mode() Mode { return BuyResell }

func (noRevenue) Project(Policy) RevenueResult { return RevenueResult{} }
