package projection

import (
	"fmt"
	"strings"
)

// InterestDeduction selects which loan interest is deducted from the taxable result.
type InterestDeduction string

const (
	// DeductFirstYearInterest deducts the interest paid during the first
	// twelve months of the schedule.
	DeductFirstYearInterest InterestDeduction = "first_year"
	// DeductAverageInterest deducts the total interest spread evenly over the term.
	DeductAverageInterest InterestDeduction = "average"
	// DeductNoInterest deducts nothing.
	DeductNoInterest InterestDeduction = "none"
)

// TouristTaxTreatment selects whether tourist tax counts as owner revenue.
type TouristTaxTreatment string

const (
	// TouristTaxPassThrough treats tourist tax as collected and remitted.
	TouristTaxPassThrough TouristTaxTreatment = "pass_through"
	// TouristTaxRetained adds tourist tax to the owner's revenue.
	TouristTaxRetained TouristTaxTreatment = "retained"
)

// Policy holds the engine settings that are product decisions rather than
// arithmetic.
type Policy struct {
	InterestDeduction InterestDeduction   `json:"interestDeduction" yaml:"interestDeduction"`
	TouristTax        TouristTaxTreatment `json:"touristTax" yaml:"touristTax"`
}

// DefaultPolicy deducts first-year interest and passes tourist tax through.
func DefaultPolicy() Policy {
	return Policy{
		InterestDeduction: DeductFirstYearInterest,
		TouristTax:        TouristTaxPassThrough,
	}
}

// WithDefaults fills unset fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	defaults := DefaultPolicy()
	if p.InterestDeduction == "" {
		p.InterestDeduction = defaults.InterestDeduction
	}
	if p.TouristTax == "" {
		p.TouristTax = defaults.TouristTax
	}
	return p
}

// Validate checks that every policy field holds a known value.
func (p Policy) Validate() error {
	switch p.InterestDeduction {
	case DeductFirstYearInterest, DeductAverageInterest, DeductNoInterest:
	default:
		return fmt.Errorf("unknown interest deduction policy %q", p.InterestDeduction)
	}
	switch p.TouristTax {
	case TouristTaxPassThrough, TouristTaxRetained:
	default:
		return fmt.Errorf("unknown tourist tax treatment %q", p.TouristTax)
	}
	return nil
}

// ParsePolicy builds a Policy from loosely formatted names, leaving empty
// names at their defaults.
func ParsePolicy(interestDeduction, touristTax string) (Policy, error) {
	p := Policy{
		InterestDeduction: InterestDeduction(strings.ToLower(strings.TrimSpace(interestDeduction))),
		TouristTax:        TouristTaxTreatment(strings.ToLower(strings.TrimSpace(touristTax))),
	}.WithDefaults()
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
