package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/period"
)

// PropertyConfig describes one property of the portfolio and the mode it is
// projected in.
type PropertyConfig struct {
	Name        string            `json:"name" yaml:"name"`
	City        string            `json:"city,omitempty" yaml:"city,omitempty"`
	Mode        string            `json:"mode" yaml:"mode"`
	Active      *bool             `json:"active,omitempty" yaml:"active,omitempty"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Financing   FinancingConfig   `json:"financing" yaml:"financing"`
	Charges     ChargesConfig     `json:"charges" yaml:"charges"`
	Taxation    TaxationConfig    `json:"taxation" yaml:"taxation"`
	FlatRent    *FlatRentConfig   `json:"flatRent,omitempty" yaml:"flatRent,omitempty"`
	Occupancy   *OccupancyConfig  `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`
	Resale      *ResaleConfig     `json:"resale,omitempty" yaml:"resale,omitempty"`
}

type AcquisitionConfig struct {
	AgencyPrice         Amount `json:"agencyPrice" yaml:"agencyPrice"`
	AgencyFee           Amount `json:"agencyFee,omitempty" yaml:"agencyFee,omitempty"`
	NetSellerPrice      Amount `json:"netSellerPrice,omitempty" yaml:"netSellerPrice,omitempty"`
	FurnitureDiscount   Amount `json:"furnitureDiscount,omitempty" yaml:"furnitureDiscount,omitempty"`
	NotaryFeePercent    Amount `json:"notaryFeePercent,omitempty" yaml:"notaryFeePercent,omitempty"`
	RenovationCost      Amount `json:"renovationCost,omitempty" yaml:"renovationCost,omitempty"`
	RenovationEstimated Amount `json:"renovationEstimated,omitempty" yaml:"renovationEstimated,omitempty"`
	RenovationRemaining Amount `json:"renovationRemaining,omitempty" yaml:"renovationRemaining,omitempty"`
}

type FinancingConfig struct {
	LoanRatePercent          Amount `json:"loanRatePercent" yaml:"loanRatePercent"`
	LoanTermYears            Amount `json:"loanTermYears" yaml:"loanTermYears"`
	DownPayment              Amount `json:"downPayment,omitempty" yaml:"downPayment,omitempty"`
	BorrowerInsuranceMonthly Amount `json:"borrowerInsuranceMonthly,omitempty" yaml:"borrowerInsuranceMonthly,omitempty"`
}

// ChargeConfig is an amount with the period it is declared in; anything but
// "monthly" is annual.
type ChargeConfig struct {
	Amount Amount `json:"amount" yaml:"amount"`
	Period string `json:"period,omitempty" yaml:"period,omitempty"`
}

type ChargesConfig struct {
	PropertyTax        ChargeConfig `json:"propertyTax,omitempty" yaml:"propertyTax,omitempty"`
	CondoFees          ChargeConfig `json:"condoFees,omitempty" yaml:"condoFees,omitempty"`
	OwnerInsurance     ChargeConfig `json:"ownerInsurance,omitempty" yaml:"ownerInsurance,omitempty"`
	Utilities          Amount       `json:"utilities,omitempty" yaml:"utilities,omitempty"`
	Internet           Amount       `json:"internet,omitempty" yaml:"internet,omitempty"`
	MaintenanceReserve Amount       `json:"maintenanceReserve,omitempty" yaml:"maintenanceReserve,omitempty"`
	RecoverableCharges Amount       `json:"recoverableCharges,omitempty" yaml:"recoverableCharges,omitempty"`
	OtherOutflow       Amount       `json:"otherOutflow,omitempty" yaml:"otherOutflow,omitempty"`
}

type TaxationConfig struct {
	MarginalRatePercent       Amount `json:"marginalRatePercent" yaml:"marginalRatePercent"`
	SocialContributionPercent Amount `json:"socialContributionPercent" yaml:"socialContributionPercent"`
}

type FlatRentConfig struct {
	GrossRentExcludingCharges Amount `json:"grossRentExcludingCharges" yaml:"grossRentExcludingCharges"`
	RecoverableChargesBilled  Amount `json:"recoverableChargesBilled,omitempty" yaml:"recoverableChargesBilled,omitempty"`
}

type OccupancyConfig struct {
	NightlyPrice                Amount `json:"nightlyPrice" yaml:"nightlyPrice"`
	TargetNightsPerYear         Amount `json:"targetNightsPerYear" yaml:"targetNightsPerYear"`
	AverageStayLengthNights     Amount `json:"averageStayLengthNights,omitempty" yaml:"averageStayLengthNights,omitempty"`
	TouristTaxPerNightPerGuest  Amount `json:"touristTaxPerNightPerGuest,omitempty" yaml:"touristTaxPerNightPerGuest,omitempty"`
	AverageGuests               Amount `json:"averageGuests,omitempty" yaml:"averageGuests,omitempty"`
	PlatformFeePercent          Amount `json:"platformFeePercent,omitempty" yaml:"platformFeePercent,omitempty"`
	ManagementFeePercent        Amount `json:"managementFeePercent,omitempty" yaml:"managementFeePercent,omitempty"`
	ChannelManagerMonthlyFee    Amount `json:"channelManagerMonthlyFee,omitempty" yaml:"channelManagerMonthlyFee,omitempty"`
	CleaningCostPerStay         Amount `json:"cleaningCostPerStay,omitempty" yaml:"cleaningCostPerStay,omitempty"`
	LaundryCostPerStay          Amount `json:"laundryCostPerStay,omitempty" yaml:"laundryCostPerStay,omitempty"`
	SuppliesCostPerStay         Amount `json:"suppliesCostPerStay,omitempty" yaml:"suppliesCostPerStay,omitempty"`
	OtherVariableCostPerStay    Amount `json:"otherVariableCostPerStay,omitempty" yaml:"otherVariableCostPerStay,omitempty"`
	AvailabilityRatePercent     Amount `json:"availabilityRatePercent" yaml:"availabilityRatePercent"`
	AverageOccupancyRatePercent Amount `json:"averageOccupancyRatePercent" yaml:"averageOccupancyRatePercent"`
}

type ResaleConfig struct {
	ExpectedResalePrice Amount `json:"expectedResalePrice" yaml:"expectedResalePrice"`
	HoldingYears        Amount `json:"holdingYears" yaml:"holdingYears"`
	ResaleCostPercent   Amount `json:"resaleCostPercent,omitempty" yaml:"resaleCostPercent,omitempty"`
}

// IsActive reports whether the property is projected. Properties are active
// unless disabled.
func (p PropertyConfig) IsActive() bool {
	return p.Active == nil || *p.Active
}

func (f FinancingConfig) termYears() int {
	return roundYears(f.LoanTermYears)
}

// ToInput converts the property into an engine input. The mode accepts the
// legacy aliases lld, lcd and av.
func (p PropertyConfig) ToInput() (projection.Input, error) {
	mode, err := projection.ParseMode(p.Mode)
	if err != nil {
		return projection.Input{}, fmt.Errorf("property %q: %w", p.Name, err)
	}

	a, f, c, t := p.Acquisition, p.Financing, p.Charges, p.Taxation
	in := projection.Input{
		Mode: mode,
		Acquisition: projection.Acquisition{
			AgencyPrice:         float64(a.AgencyPrice),
			AgencyFee:           float64(a.AgencyFee),
			NetSellerPrice:      float64(a.NetSellerPrice),
			FurnitureDiscount:   float64(a.FurnitureDiscount),
			NotaryFeePercent:    float64(a.NotaryFeePercent),
			RenovationCost:      float64(a.RenovationCost),
			RenovationEstimated: float64(a.RenovationEstimated),
			RenovationRemaining: float64(a.RenovationRemaining),
		},
		Financing: projection.Financing{
			LoanRatePercent:          float64(f.LoanRatePercent),
			LoanTermYears:            f.termYears(),
			DownPayment:              float64(f.DownPayment),
			BorrowerInsuranceMonthly: float64(f.BorrowerInsuranceMonthly),
		},
		Charges: projection.Charges{
			PropertyTax:        c.PropertyTax.charge(),
			CondoFees:          c.CondoFees.charge(),
			OwnerInsurance:     c.OwnerInsurance.charge(),
			Utilities:          float64(c.Utilities),
			Internet:           float64(c.Internet),
			MaintenanceReserve: float64(c.MaintenanceReserve),
			RecoverableCharges: float64(c.RecoverableCharges),
			OtherOutflow:       float64(c.OtherOutflow),
		},
		Taxation: projection.Taxation{
			MarginalRatePercent:       float64(t.MarginalRatePercent),
			SocialContributionPercent: float64(t.SocialContributionPercent),
		},
	}

	if r := p.FlatRent; r != nil {
		in.FlatRent = &projection.FlatRent{
			GrossRentExcludingCharges: float64(r.GrossRentExcludingCharges),
			RecoverableChargesBilled:  float64(r.RecoverableChargesBilled),
		}
	}
	if o := p.Occupancy; o != nil {
		in.Occupancy = &projection.Occupancy{
			NightlyPrice:                float64(o.NightlyPrice),
			TargetNightsPerYear:         float64(o.TargetNightsPerYear),
			AverageStayLengthNights:     float64(o.AverageStayLengthNights),
			TouristTaxPerNightPerGuest:  float64(o.TouristTaxPerNightPerGuest),
			AverageGuests:               float64(o.AverageGuests),
			PlatformFeePercent:          float64(o.PlatformFeePercent),
			ManagementFeePercent:        float64(o.ManagementFeePercent),
			ChannelManagerMonthlyFee:    float64(o.ChannelManagerMonthlyFee),
			CleaningCostPerStay:         float64(o.CleaningCostPerStay),
			LaundryCostPerStay:          float64(o.LaundryCostPerStay),
			SuppliesCostPerStay:         float64(o.SuppliesCostPerStay),
			OtherVariableCostPerStay:    float64(o.OtherVariableCostPerStay),
			AvailabilityRatePercent:     float64(o.AvailabilityRatePercent),
			AverageOccupancyRatePercent: float64(o.AverageOccupancyRatePercent),
		}
	}
	if r := p.Resale; r != nil {
		in.Resale = &projection.Resale{
			ExpectedResalePrice: float64(r.ExpectedResalePrice),
			HoldingYears:        roundYears(r.HoldingYears),
			ResaleCostPercent:   float64(r.ResaleCostPercent),
		}
	}
	return in, nil
}

func (c ChargeConfig) charge() period.Charge {
	return period.Charge{Amount: float64(c.Amount), Period: period.Parse(c.Period)}
}

// FromInput builds the configuration form of an engine input, used when a
// computed portfolio is exported.
func FromInput(name, city string, in projection.Input) PropertyConfig {
	p := PropertyConfig{
		Name: strings.TrimSpace(name),
		City: strings.TrimSpace(city),
		Mode: string(in.Mode),
		Acquisition: AcquisitionConfig{
			AgencyPrice:         Amount(in.Acquisition.AgencyPrice),
			AgencyFee:           Amount(in.Acquisition.AgencyFee),
			NetSellerPrice:      Amount(in.Acquisition.NetSellerPrice),
			FurnitureDiscount:   Amount(in.Acquisition.FurnitureDiscount),
			NotaryFeePercent:    Amount(in.Acquisition.NotaryFeePercent),
			RenovationCost:      Amount(in.Acquisition.RenovationCost),
			RenovationEstimated: Amount(in.Acquisition.RenovationEstimated),
			RenovationRemaining: Amount(in.Acquisition.RenovationRemaining),
		},
		Financing: FinancingConfig{
			LoanRatePercent:          Amount(in.Financing.LoanRatePercent),
			LoanTermYears:            Amount(in.Financing.LoanTermYears),
			DownPayment:              Amount(in.Financing.DownPayment),
			BorrowerInsuranceMonthly: Amount(in.Financing.BorrowerInsuranceMonthly),
		},
		Charges: ChargesConfig{
			PropertyTax:        chargeConfig(in.Charges.PropertyTax),
			CondoFees:          chargeConfig(in.Charges.CondoFees),
			OwnerInsurance:     chargeConfig(in.Charges.OwnerInsurance),
			Utilities:          Amount(in.Charges.Utilities),
			Internet:           Amount(in.Charges.Internet),
			MaintenanceReserve: Amount(in.Charges.MaintenanceReserve),
			RecoverableCharges: Amount(in.Charges.RecoverableCharges),
			OtherOutflow:       Amount(in.Charges.OtherOutflow),
		},
		Taxation: TaxationConfig{
			MarginalRatePercent:       Amount(in.Taxation.MarginalRatePercent),
			SocialContributionPercent: Amount(in.Taxation.SocialContributionPercent),
		},
	}
	if r := in.FlatRent; r != nil {
		p.FlatRent = &FlatRentConfig{
			GrossRentExcludingCharges: Amount(r.GrossRentExcludingCharges),
			RecoverableChargesBilled:  Amount(r.RecoverableChargesBilled),
		}
	}
	if o := in.Occupancy; o != nil {
		p.Occupancy = &OccupancyConfig{
			NightlyPrice:                Amount(o.NightlyPrice),
			TargetNightsPerYear:         Amount(o.TargetNightsPerYear),
			AverageStayLengthNights:     Amount(o.AverageStayLengthNights),
			TouristTaxPerNightPerGuest:  Amount(o.TouristTaxPerNightPerGuest),
			AverageGuests:               Amount(o.AverageGuests),
			PlatformFeePercent:          Amount(o.PlatformFeePercent),
			ManagementFeePercent:        Amount(o.ManagementFeePercent),
			ChannelManagerMonthlyFee:    Amount(o.ChannelManagerMonthlyFee),
			CleaningCostPerStay:         Amount(o.CleaningCostPerStay),
			LaundryCostPerStay:          Amount(o.LaundryCostPerStay),
			SuppliesCostPerStay:         Amount(o.SuppliesCostPerStay),
			OtherVariableCostPerStay:    Amount(o.OtherVariableCostPerStay),
			AvailabilityRatePercent:     Amount(o.AvailabilityRatePercent),
			AverageOccupancyRatePercent: Amount(o.AverageOccupancyRatePercent),
		}
	}
	if r := in.Resale; r != nil {
		p.Resale = &ResaleConfig{
			ExpectedResalePrice: Amount(r.ExpectedResalePrice),
			HoldingYears:        Amount(r.HoldingYears),
			ResaleCostPercent:   Amount(r.ResaleCostPercent),
		}
	}
	return p
}

func chargeConfig(c period.Charge) ChargeConfig {
	return ChargeConfig{Amount: Amount(c.Amount), Period: string(period.Parse(string(c.Period)))}
}
