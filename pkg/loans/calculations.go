// Package loans provides common loan processing utilities.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidLoanTerms is returned when a loan cannot be amortized.
var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// Payment holds the values for a given payment.
type Payment struct {
	Period             int     `json:"period"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Loan represents loan configuration parameters
type Loan struct {
	Name         string
	Principal    float64
	InterestRate float64 // annual, percent
	TermYears    int
}

// TermMonths returns the number of monthly periods of the loan.
func (l Loan) TermMonths() int {
	return l.TermYears * constants.MonthsPerYear
}

// Validate checks that the loan can be amortized.
func (l Loan) Validate() error {
	if !mathutil.IsFinite(l.Principal) || l.Principal < 0 {
		return fmt.Errorf("%w: principal %v", ErrInvalidLoanTerms, l.Principal)
	}
	if !mathutil.IsFinite(l.InterestRate) || l.InterestRate < 0 {
		return fmt.Errorf("%w: interest rate %v", ErrInvalidLoanTerms, l.InterestRate)
	}
	if l.TermYears < 0 || (l.Principal > 0 && l.TermYears == 0) {
		return fmt.Errorf("%w: term of %d years for principal %.2f", ErrInvalidLoanTerms, l.TermYears, l.Principal)
	}
	return nil
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	return principal * periodicInterestRate / (1 - math.Pow(1+periodicInterestRate, -float64(termMonths)))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateTotalInterest returns the interest paid over the whole term.
func CalculateTotalInterest(principal, annualInterestRate float64, termMonths int) float64 {
	payment := CalculateMonthlyPayment(principal, annualInterestRate, termMonths)
	total := payment*float64(termMonths) - principal
	if total < 0 {
		return 0
	}
	return total
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan.
// Each period's interest is rounded to the cent and the last period absorbs
// the accumulated rounding so the remaining principal ends at exactly zero.
// A loan with no principal has an empty schedule.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan Loan) ([]Payment, error) {
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	principal := mathutil.Round(loan.Principal)
	if principal == 0 {
		return nil, nil
	}

	termMonths := loan.TermMonths()
	monthlyPayment := mathutil.Round(CalculateMonthlyPayment(principal, loan.InterestRate, termMonths))
	schedule := make([]Payment, 0, termMonths)
	balance := principal

	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Period = month
		current.Interest = mathutil.Round(CalculateInterestPayment(balance, loan.InterestRate))
		current.Principal = mathutil.Round(monthlyPayment - current.Interest)

		if month == termMonths || current.Principal >= balance {
			if month != termMonths {
				g.logger.Debug(fmt.Sprintf("loan %s fully repaid at period %d of %d", loan.Name, month, termMonths),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
			// We will get machine error otherwise so the residual goes here.
			current.Principal = balance
			current.Payment = mathutil.Round(current.Principal + current.Interest)
			current.RemainingPrincipal = 0
			schedule = append(schedule, current)
			break
		}

		current.Payment = monthlyPayment
		balance = mathutil.Round(balance - current.Principal)
		current.RemainingPrincipal = balance
		schedule = append(schedule, current)
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments for loan %s", len(schedule), loan.Name),
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("principal", principal),
		zap.Float64("monthlyPayment", monthlyPayment),
	)

	return schedule, nil
}

// InterestForYear sums the interest paid during the given loan year (1-based).
func InterestForYear(schedule []Payment, year int) float64 {
	if year < 1 {
		return 0
	}
	first := (year-1)*constants.MonthsPerYear + 1
	last := year * constants.MonthsPerYear

	total := 0.0
	for _, payment := range schedule {
		if payment.Period >= first && payment.Period <= last {
			total += payment.Interest
		}
	}
	return mathutil.Round(total)
}

// RemainingPrincipalAfter returns the balance still owed once the given
// number of payments has been made.
func RemainingPrincipalAfter(schedule []Payment, months int) float64 {
	if len(schedule) == 0 {
		return 0
	}
	if months <= 0 {
		return mathutil.Round(schedule[0].RemainingPrincipal + schedule[0].Principal)
	}
	if months >= len(schedule) {
		return 0
	}
	return schedule[months-1].RemainingPrincipal
}

// SumPrincipal returns the total principal repaid over the schedule.
func SumPrincipal(schedule []Payment) float64 {
	total := 0.0
	for _, payment := range schedule {
		total += payment.Principal
	}
	return total
}
