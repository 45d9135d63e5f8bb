package projection

import (
	"errors"

	"github.com/iwvelando/rental-projection/pkg/loans"
	"github.com/iwvelando/rental-projection/pkg/period"
)

var (
	// ErrInvalidAmount is returned for a negative or non-finite monetary input.
	ErrInvalidAmount = period.ErrInvalidAmount

	// ErrInvalidLoanTerms is returned for a non-positive term with a positive principal.
	ErrInvalidLoanTerms = loans.ErrInvalidLoanTerms

	// ErrInvalidInput is returned for structurally inconsistent input, such as
	// a negative acquisition price or a revenue record not matching the mode.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZeroInvestment is returned when the return on investment
	// would be computed against zero invested cash.
	ErrDivisionByZeroInvestment = errors.New("division by zero investment")
)

// IsValidation reports whether err is caused by the caller's input rather
// than by an internal failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidLoanTerms) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDivisionByZeroInvestment) ||
		errors.Is(err, period.ErrInvalidPeriod)
}
