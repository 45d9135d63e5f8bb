// Package projection turns the acquisition, financing and operating
// parameters of a rental property into loan, cash flow, tax and return
// figures for one investment mode.
package projection

import (
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/loans"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine computes projections. It holds no state besides its settings and is
// safe for concurrent use.
type Engine struct {
	logger    *zap.Logger
	policy    Policy
	generator *loans.AmortizationScheduleGenerator
}

// NewEngine returns an Engine applying policy, with unset policy fields
// taking their defaults.
func NewEngine(logger *zap.Logger, policy Policy) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy = policy.WithDefaults()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		logger:    logger,
		policy:    policy,
		generator: loans.NewAmortizationScheduleGenerator(logger),
	}, nil
}

// Policy returns the policy the engine applies.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute derives the full output for in. On error no output is returned.
func (e *Engine) Compute(in Input) (*Output, error) {
	out, err := e.compute(in)
	if err != nil {
		return nil, err
	}
	out.Schedule = nil
	return out, nil
}

// ComputeWithSchedule is Compute with the amortization schedule attached.
func (e *Engine) ComputeWithSchedule(in Input) (*Output, error) {
	return e.compute(in)
}

func (e *Engine) compute(raw Input) (*Output, error) {
	in, err := raw.normalized()
	if err != nil {
		return nil, err
	}
	if in.Resale != nil && in.Resale.HoldingYears < 0 {
		return nil, fmt.Errorf("%w: holding period of %d years", ErrInvalidInput, in.Resale.HoldingYears)
	}

	model, err := in.RevenueModel()
	if err != nil {
		return nil, err
	}

	acquisition := AggregateAcquisition(in.Acquisition, in.Financing.DownPayment)

	loan := loans.Loan{
		Name:         string(in.Mode),
		Principal:    acquisition.PrincipalFinanced,
		InterestRate: in.Financing.LoanRatePercent,
		TermYears:    in.Financing.LoanTermYears,
	}
	schedule, err := e.generator.GenerateSchedule(loan)
	if err != nil {
		return nil, err
	}
	monthlyPayment := loans.CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.TermMonths())
	totalInterest := loans.CalculateTotalInterest(loan.Principal, loan.InterestRate, loan.TermMonths())

	outflows, err := AggregateOutflows(in.Charges, in.Financing.BorrowerInsuranceMonthly)
	if err != nil {
		return nil, err
	}

	revenue := model.Project(e.policy)

	deductible := DeductibleInterest(e.policy.InterestDeduction, schedule, totalInterest, in.Financing.LoanTermYears)
	tax := EstimateTax(revenue.Annual, outflows.Annual, deductible, in.Taxation)

	cashFlow, err := AggregateCashFlow(CashFlowInputs{
		RevenueMonthly: revenue.Monthly,
		RevenueAnnual:  revenue.Annual,
		OutflowMonthly: outflows.Monthly,
		OutflowAnnual:  outflows.Annual,
		MonthlyPayment: monthlyPayment,
		TaxMonthly:     tax.TaxMonthly,
		TaxAnnual:      tax.TaxAnnual,
		LoanTermYears:  in.Financing.LoanTermYears,
		CashInvested:   acquisition.CashInvested,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{
		Mode:                      in.Mode,
		TotalAcquisitionCost:      acquisition.TotalCost,
		TotalCashInvested:         acquisition.CashInvested,
		PrincipalFinanced:         acquisition.PrincipalFinanced,
		Overfunded:                acquisition.Overfunded,
		RenovationProgressPercent: RenovationProgress(in.Acquisition),
		MonthlyPayment:            monthlyPayment,
		TotalInterestOverTerm:     totalInterest,
		FirstYearInterest:         loans.InterestForYear(schedule, 1),
		DeductibleInterest:        tax.DeductibleInterest,
		TotalOutflowMonthly:       outflows.Monthly,
		TotalOutflowAnnual:        outflows.Annual,
		GrossRevenueMonthly:       revenue.Monthly,
		GrossRevenueAnnual:        revenue.Annual,
		TaxableResultMonthly:      tax.TaxableResultMonthly,
		TaxableResultAnnual:       tax.TaxableResultAnnual,
		TaxMonthly:                tax.TaxMonthly,
		TaxAnnual:                 tax.TaxAnnual,
		CashFlowMonthly:           cashFlow.Monthly,
		CashFlowAnnual:            cashFlow.Annual,
		CashFlowCumulative:        cashFlow.Cumulative,
		NetNetCashFlowMonthly:     cashFlow.NetNetMonthly,
		NetNetCashFlowAnnual:      cashFlow.NetNetAnnual,
		NetNetCashFlowCumulative:  cashFlow.NetNetCumulative,
		ReturnOnInvestmentPercent: cashFlow.ReturnOnInvestmentPercent,
		Outflows:                  outflows.Breakdown,
		FlatRent:                  revenue.FlatRent,
		Occupancy:                 revenue.Occupancy,
		Schedule:                  schedule,
	}
	if in.Mode == BuyResell && in.Resale != nil {
		out.Resale = ProjectResale(*in.Resale, acquisition.TotalCost, outflows.Annual, schedule)
	}
	out.round()

	e.logger.Debug(fmt.Sprintf("computed %s projection", in.Mode),
		zap.String("op", "projection.Compute"),
		zap.Float64("principalFinanced", out.PrincipalFinanced),
		zap.Float64("netNetCashFlowAnnual", out.NetNetCashFlowAnnual),
		zap.Float64("roi", out.ReturnOnInvestmentPercent),
	)
	return out, nil
}

// round brings every monetary figure to the cent. Night and stay counts keep
// their fractional values.
func (o *Output) round() {
	for _, v := range []*float64{
		&o.TotalAcquisitionCost, &o.TotalCashInvested, &o.PrincipalFinanced, &o.RenovationProgressPercent,
		&o.MonthlyPayment, &o.TotalInterestOverTerm, &o.FirstYearInterest, &o.DeductibleInterest,
		&o.TotalOutflowMonthly, &o.TotalOutflowAnnual, &o.GrossRevenueMonthly, &o.GrossRevenueAnnual,
		&o.TaxableResultMonthly, &o.TaxableResultAnnual, &o.TaxMonthly, &o.TaxAnnual,
		&o.CashFlowMonthly, &o.CashFlowAnnual, &o.CashFlowCumulative,
		&o.NetNetCashFlowMonthly, &o.NetNetCashFlowAnnual, &o.NetNetCashFlowCumulative,
		&o.ReturnOnInvestmentPercent,
		&o.Outflows.PropertyTax, &o.Outflows.CondoFees, &o.Outflows.OwnerInsurance,
		&o.Outflows.Utilities, &o.Outflows.Internet, &o.Outflows.MaintenanceReserve,
		&o.Outflows.RecoverableCharges, &o.Outflows.OtherOutflow, &o.Outflows.BorrowerInsurance,
	} {
		*v = mathutil.Round(*v)
	}
	if d := o.FlatRent; d != nil {
		for _, v := range []*float64{
			&d.RentExcludingChargesMonthly, &d.ChargesBilledMonthly,
			&d.RentIncludingChargesMonthly, &d.RentIncludingChargesAnnual,
		} {
			*v = mathutil.Round(*v)
		}
	}
	if d := o.Occupancy; d != nil {
		for _, v := range []*float64{
			&d.GrossLodgingRevenue, &d.TouristTax, &d.PlatformFees, &d.ManagementFees,
			&d.VariableCosts, &d.ChannelManagerFees, &d.NetLodgingRevenue,
		} {
			*v = mathutil.Round(*v)
		}
	}
	if d := o.Resale; d != nil {
		for _, v := range []*float64{
			&d.ResalePrice, &d.ResaleCosts, &d.RemainingPrincipal, &d.NetProceeds,
			&d.HoldingCosts, &d.CapitalGain, &d.ProjectedProfit,
		} {
			*v = mathutil.Round(*v)
		}
	}
}

// Clone returns a deep copy of the output.
func (o *Output) Clone() *Output {
	if o == nil {
		return nil
	}
	c := *o
	if o.FlatRent != nil {
		d := *o.FlatRent
		c.FlatRent = &d
	}
	if o.Occupancy != nil {
		d := *o.Occupancy
		c.Occupancy = &d
	}
	if o.Resale != nil {
		d := *o.Resale
		c.Resale = &d
	}
	if o.Schedule != nil {
		c.Schedule = append([]loans.Payment(nil), o.Schedule...)
	}
	return &c
}
