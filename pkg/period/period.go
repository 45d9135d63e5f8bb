// Package period normalizes recurring charges declared either monthly or
// annually into a monthly and annual pair.
package period

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// Period names how often a charge is declared.
type Period string

const (
	Monthly Period = "monthly"
	Annual  Period = "annual"
)

var (
	// ErrInvalidAmount is returned for negative or non-finite amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPeriod is returned for a period other than monthly or annual.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Charge is an amount paired with the period it is declared in.
type Charge struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Period Period  `json:"period" yaml:"period"`
}

// Parse maps a user supplied period to a Period. Anything that is not
// "monthly" is treated as annual, the empty string included.
func Parse(s string) Period {
	if strings.EqualFold(strings.TrimSpace(s), string(Monthly)) {
		return Monthly
	}
	return Annual
}

// Valid reports whether p is Monthly or Annual.
func (p Period) Valid() bool {
	return p == Monthly || p == Annual
}

// Normalize returns the monthly and annual values of amount declared over p.
func Normalize(amount float64, p Period) (monthly, annual float64, err error) {
	if !mathutil.IsFinite(amount) || amount < 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	switch p {
	case Monthly:
		return amount, amount * constants.MonthsPerYear, nil
	case Annual:
		return amount / constants.MonthsPerYear, amount, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
}

// Annualize normalizes the charge and returns its annual value.
func (c Charge) Annualize() (float64, error) {
	_, annual, err := Normalize(c.Amount, c.Period)
	return annual, err
}
