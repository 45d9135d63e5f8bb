package projection

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"github.com/iwvelando/rental-projection/pkg/period"
)

// Mode is the investment strategy a projection is computed for.
type Mode string

const (
	LongTermRental  Mode = "long_term"
	ShortTermRental Mode = "short_term"
	BuyResell       Mode = "buy_resell"
)

// Modes lists every supported Mode.
var Modes = []Mode{LongTermRental, ShortTermRental, BuyResell}

// ParseMode maps a mode name, or one of the legacy aliases lld, lcd and av,
// to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LongTermRental), "lld", "long-term", "longterm":
		return LongTermRental, nil
	case string(ShortTermRental), "lcd", "short-term", "shortterm":
		return ShortTermRental, nil
	case string(BuyResell), "av", "buy-resell", "buyresell":
		return BuyResell, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, s)
}

// Valid reports whether m is a supported Mode.
func (m Mode) Valid() bool {
	return m == LongTermRental || m == ShortTermRental || m == BuyResell
}

// Input holds everything the engine needs for one property in one mode.
// Exactly one revenue record matching Mode must be set: FlatRent for
// long-term rentals, Occupancy for short-term rentals and none (Resale is
// optional) for buy-resell.
type Input struct {
	Mode        Mode        `json:"mode"`
	Acquisition Acquisition `json:"acquisition"`
	Financing   Financing   `json:"financing"`
	Charges     Charges     `json:"charges"`
	Taxation    Taxation    `json:"taxation"`

	FlatRent  *FlatRent  `json:"flatRent,omitempty"`
	Occupancy *Occupancy `json:"occupancy,omitempty"`
	Resale    *Resale    `json:"resale,omitempty"`
}

// Acquisition describes the purchase.
type Acquisition struct {
	AgencyPrice         float64 `json:"agencyPrice"`
	AgencyFee           float64 `json:"agencyFee"`
	NetSellerPrice      float64 `json:"netSellerPrice"`
	FurnitureDiscount   float64 `json:"furnitureDiscount"`
	NotaryFeePercent    float64 `json:"notaryFeePercent"`
	RenovationCost      float64 `json:"renovationCost"`
	RenovationEstimated float64 `json:"renovationEstimated"`
	RenovationRemaining float64 `json:"renovationRemaining"`
}

// Financing describes the loan taken to fund the acquisition.
type Financing struct {
	LoanRatePercent float64 `json:"loanRatePercent"`
	LoanTermYears   int     `json:"loanTermYears"`
	DownPayment     float64 `json:"downPayment"`
	// BorrowerInsuranceMonthly is always a monthly amount.
	BorrowerInsuranceMonthly float64 `json:"borrowerInsuranceMonthly"`
}

// Charges lists recurring non-financing costs. The unpaired amounts are annual.
type Charges struct {
	PropertyTax        period.Charge `json:"propertyTax"`
	CondoFees          period.Charge `json:"condoFees"`
	OwnerInsurance     period.Charge `json:"ownerInsurance"`
	Utilities          float64       `json:"utilities"`
	Internet           float64       `json:"internet"`
	MaintenanceReserve float64       `json:"maintenanceReserve"`
	RecoverableCharges float64       `json:"recoverableCharges"`
	OtherOutflow       float64       `json:"otherOutflow"`
}

// Taxation holds the caller supplied rates.
type Taxation struct {
	MarginalRatePercent       float64 `json:"marginalRatePercent"`
	SocialContributionPercent float64 `json:"socialContributionPercent"`
}

// FlatRent is the long-term rental revenue record; both amounts are monthly.
type FlatRent struct {
	GrossRentExcludingCharges float64 `json:"grossRentExcludingCharges"`
	RecoverableChargesBilled  float64 `json:"recoverableChargesBilled"`
}

// Occupancy is the short-term rental revenue record.
type Occupancy struct {
	NightlyPrice                float64 `json:"nightlyPrice"`
	TargetNightsPerYear         float64 `json:"targetNightsPerYear"`
	AverageStayLengthNights     float64 `json:"averageStayLengthNights"`
	TouristTaxPerNightPerGuest  float64 `json:"touristTaxPerNightPerGuest"`
	AverageGuests               float64 `json:"averageGuests"`
	PlatformFeePercent          float64 `json:"platformFeePercent"`
	ManagementFeePercent        float64 `json:"managementFeePercent"`
	ChannelManagerMonthlyFee    float64 `json:"channelManagerMonthlyFee"`
	CleaningCostPerStay         float64 `json:"cleaningCostPerStay"`
	LaundryCostPerStay          float64 `json:"laundryCostPerStay"`
	SuppliesCostPerStay         float64 `json:"suppliesCostPerStay"`
	OtherVariableCostPerStay    float64 `json:"otherVariableCostPerStay"`
	AvailabilityRatePercent     float64 `json:"availabilityRatePercent"`
	AverageOccupancyRatePercent float64 `json:"averageOccupancyRatePercent"`
}

// Resale optionally describes the planned exit of a buy-resell operation.
type Resale struct {
	ExpectedResalePrice float64 `json:"expectedResalePrice"`
	HoldingYears        int     `json:"holdingYears"`
	ResaleCostPercent   float64 `json:"resaleCostPercent"`
}

// normalized returns a copy of the input with every percentage clamped to
// [0, 100] and every monetary field checked for finiteness.
func (in Input) normalized() (Input, error) {
	if !in.Mode.Valid() {
		return in, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, in.Mode)
	}

	out := in
	out.Acquisition.NotaryFeePercent = mathutil.ClampPercent(in.Acquisition.NotaryFeePercent)
	out.Financing.LoanRatePercent = mathutil.ClampPercent(in.Financing.LoanRatePercent)
	out.Taxation.MarginalRatePercent = mathutil.ClampPercent(in.Taxation.MarginalRatePercent)
	out.Taxation.SocialContributionPercent = mathutil.ClampPercent(in.Taxation.SocialContributionPercent)

	// An undeclared period means the amount is already annual.
	for _, charge := range []*period.Charge{&out.Charges.PropertyTax, &out.Charges.CondoFees, &out.Charges.OwnerInsurance} {
		if charge.Period == "" {
			charge.Period = period.Annual
		}
	}

	if in.Occupancy != nil {
		occ := *in.Occupancy
		occ.PlatformFeePercent = mathutil.ClampPercent(occ.PlatformFeePercent)
		occ.ManagementFeePercent = mathutil.ClampPercent(occ.ManagementFeePercent)
		occ.AvailabilityRatePercent = mathutil.ClampPercent(occ.AvailabilityRatePercent)
		occ.AverageOccupancyRatePercent = mathutil.ClampPercent(occ.AverageOccupancyRatePercent)
		out.Occupancy = &occ
	}
	if in.FlatRent != nil {
		flat := *in.FlatRent
		out.FlatRent = &flat
	}
	if in.Resale != nil {
		resale := *in.Resale
		resale.ResaleCostPercent = mathutil.ClampPercent(resale.ResaleCostPercent)
		out.Resale = &resale
	}

	if err := out.checkAmounts(); err != nil {
		return in, err
	}
	return out, nil
}

type namedAmount struct {
	name  string
	value float64
}

func (in Input) checkAmounts() error {
	amounts := []namedAmount{
		{"agencyPrice", in.Acquisition.AgencyPrice},
		{"agencyFee", in.Acquisition.AgencyFee},
		{"netSellerPrice", in.Acquisition.NetSellerPrice},
		{"furnitureDiscount", in.Acquisition.FurnitureDiscount},
		{"renovationCost", in.Acquisition.RenovationCost},
		{"renovationEstimated", in.Acquisition.RenovationEstimated},
		{"renovationRemaining", in.Acquisition.RenovationRemaining},
		{"downPayment", in.Financing.DownPayment},
		{"borrowerInsuranceMonthly", in.Financing.BorrowerInsuranceMonthly},
		{"utilities", in.Charges.Utilities},
		{"internet", in.Charges.Internet},
		{"maintenanceReserve", in.Charges.MaintenanceReserve},
		{"recoverableCharges", in.Charges.RecoverableCharges},
		{"otherOutflow", in.Charges.OtherOutflow},
	}
	if in.FlatRent != nil {
		amounts = append(amounts,
			namedAmount{"grossRentExcludingCharges", in.FlatRent.GrossRentExcludingCharges},
			namedAmount{"recoverableChargesBilled", in.FlatRent.RecoverableChargesBilled},
		)
	}
	if occ := in.Occupancy; occ != nil {
		amounts = append(amounts,
			namedAmount{"nightlyPrice", occ.NightlyPrice},
			namedAmount{"targetNightsPerYear", occ.TargetNightsPerYear},
			namedAmount{"averageStayLengthNights", occ.AverageStayLengthNights},
			namedAmount{"touristTaxPerNightPerGuest", occ.TouristTaxPerNightPerGuest},
			namedAmount{"averageGuests", occ.AverageGuests},
			namedAmount{"channelManagerMonthlyFee", occ.ChannelManagerMonthlyFee},
			namedAmount{"cleaningCostPerStay", occ.CleaningCostPerStay},
			namedAmount{"laundryCostPerStay", occ.LaundryCostPerStay},
			namedAmount{"suppliesCostPerStay", occ.SuppliesCostPerStay},
			namedAmount{"otherVariableCostPerStay", occ.OtherVariableCostPerStay},
		)
	}
	if in.Resale != nil {
		amounts = append(amounts, namedAmount{"expectedResalePrice", in.Resale.ExpectedResalePrice})
	}

	for _, amount := range amounts {
		if !mathutil.IsFinite(amount.value) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidAmount, amount.name)
		}
	}

	// The first seven entries are acquisition fields.
	for _, amount := range amounts[:7] {
		if amount.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %.2f", ErrInvalidInput, amount.name, amount.value)
		}
	}
	for _, amount := range amounts[7:] {
		if amount.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %.2f", ErrInvalidAmount, amount.name, amount.value)
		}
	}
	return nil
}
