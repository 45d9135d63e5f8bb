package projection

import (
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
)

// CashFlowInputs is the mode-independent view every revenue model is reduced
// to before cash flow and return are computed.
type CashFlowInputs struct {
	RevenueMonthly float64
	RevenueAnnual  float64
	OutflowMonthly float64
	OutflowAnnual  float64
	MonthlyPayment float64
	TaxMonthly     float64
	TaxAnnual      float64
	LoanTermYears  int
	CashInvested   float64
}

// CashFlowResult holds pre-tax and post-tax cash flow and the return on
// invested cash.
type CashFlowResult struct {
	Monthly                   float64
	Annual                    float64
	Cumulative                float64
	NetNetMonthly             float64
	NetNetAnnual              float64
	NetNetCumulative          float64
	ReturnOnInvestmentPercent float64
}

// AggregateCashFlow combines revenue, outflows, financing and tax. Annual
// figures are computed from annual components rather than by scaling the
// monthly ones. It fails with ErrDivisionByZeroInvestment when no cash was
// invested.
func AggregateCashFlow(in CashFlowInputs) (CashFlowResult, error) {
	var result CashFlowResult
	term := float64(in.LoanTermYears)

	result.Monthly = in.RevenueMonthly - in.OutflowMonthly - in.MonthlyPayment
	result.Annual = in.RevenueAnnual - in.OutflowAnnual - in.MonthlyPayment*constants.MonthsPerYear
	result.Cumulative = result.Annual * term

	result.NetNetMonthly = result.Monthly - in.TaxMonthly
	result.NetNetAnnual = result.Annual - in.TaxAnnual
	result.NetNetCumulative = result.NetNetAnnual * term

	if mathutil.IsZero(in.CashInvested) {
		return CashFlowResult{}, fmt.Errorf("%w: net-net annual cash flow %.2f", ErrDivisionByZeroInvestment, result.NetNetAnnual)
	}
	roi := result.NetNetAnnual / in.CashInvested * constants.PercentageMultiplier
	result.ReturnOnInvestmentPercent = mathutil.Clamp(roi, -constants.MaxReportableROI, constants.MaxReportableROI)
	return result, nil
}
