package projection

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/rental-projection/pkg/loans"
	"github.com/iwvelando/rental-projection/pkg/period"
)

func TestComputeLongTermRental(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	out, err := engine.Compute(longTermInput())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	assertClose(t, "TotalAcquisitionCost", out.TotalAcquisitionCost, 220000, 0.001)
	assertClose(t, "PrincipalFinanced", out.PrincipalFinanced, 200000, 0.001)
	assertClose(t, "TotalCashInvested", out.TotalCashInvested, 40000, 0.001)
	if out.Overfunded {
		t.Error("Overfunded = true, want false")
	}

	if out.MonthlyPayment < 1109.0 || out.MonthlyPayment > 1109.3 {
		t.Errorf("MonthlyPayment = %.2f, want within [1109.00, 1109.30]", out.MonthlyPayment)
	}
	if out.TotalInterestOverTerm < 66150 || out.TotalInterestOverTerm > 66250 {
		t.Errorf("TotalInterestOverTerm = %.2f, want within [66150, 66250]", out.TotalInterestOverTerm)
	}

	assertClose(t, "TotalOutflowAnnual", out.TotalOutflowAnnual, 2640, 0.001)
	assertClose(t, "TotalOutflowMonthly", out.TotalOutflowMonthly, 220, 0.001)
	assertClose(t, "Outflows.CondoFees", out.Outflows.CondoFees, 1200, 0.001)
	assertClose(t, "GrossRevenueMonthly", out.GrossRevenueMonthly, 850, 0.001)
	assertClose(t, "GrossRevenueAnnual", out.GrossRevenueAnnual, 10200, 0.001)

	if out.FlatRent == nil {
		t.Fatal("FlatRent detail is nil")
	}
	if out.Occupancy != nil || out.Resale != nil {
		t.Error("only the flat rent detail should be set")
	}
	assertClose(t, "RentIncludingChargesMonthly", out.FlatRent.RentIncludingChargesMonthly, 850, 0.001)

	wantMonthly := out.GrossRevenueMonthly - out.TotalOutflowMonthly - out.MonthlyPayment
	assertClose(t, "CashFlowMonthly", out.CashFlowMonthly, wantMonthly, 0.011)
	wantAnnual := out.GrossRevenueAnnual - out.TotalOutflowAnnual - 12*out.MonthlyPayment
	assertClose(t, "CashFlowAnnual", out.CashFlowAnnual, wantAnnual, 0.07)
	assertClose(t, "CashFlowCumulative", out.CashFlowCumulative, 20*out.CashFlowAnnual, 0.11)
	assertClose(t, "NetNetCashFlowMonthly", out.NetNetCashFlowMonthly, out.CashFlowMonthly-out.TaxMonthly, 0.011)
	assertClose(t, "NetNetCashFlowAnnual", out.NetNetCashFlowAnnual, out.CashFlowAnnual-out.TaxAnnual, 0.011)

	assertClose(t, "DeductibleInterest", out.DeductibleInterest, out.FirstYearInterest, 0.001)
	assertClose(t, "TaxableResultAnnual", out.TaxableResultAnnual, 10200-2640-out.FirstYearInterest, 0.011)
	assertClose(t, "TaxAnnual", out.TaxAnnual, out.TaxableResultAnnual*0.472, 0.011)
	assertClose(t, "TaxMonthly", out.TaxMonthly, out.TaxAnnual/12, 0.011)

	assertClose(t, "ReturnOnInvestmentPercent", out.ReturnOnInvestmentPercent, out.NetNetCashFlowAnnual/40000*100, 0.011)

	if out.Schedule != nil {
		t.Errorf("Compute() attached a schedule of %d payments", len(out.Schedule))
	}
}

func TestComputeWithSchedule(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	out, err := engine.ComputeWithSchedule(longTermInput())
	if err != nil {
		t.Fatalf("ComputeWithSchedule() error = %v", err)
	}
	if len(out.Schedule) != 240 {
		t.Fatalf("len(Schedule) = %d, want 240", len(out.Schedule))
	}
	if last := out.Schedule[len(out.Schedule)-1]; last.RemainingPrincipal != 0 {
		t.Errorf("final RemainingPrincipal = %.2f, want 0", last.RemainingPrincipal)
	}
	assertClose(t, "sum of principal", loans.SumPrincipal(out.Schedule), out.PrincipalFinanced, 0.01)
	assertClose(t, "FirstYearInterest", out.FirstYearInterest, loans.InterestForYear(out.Schedule, 1), 0.001)
}

func TestComputeIsIdempotent(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	for _, in := range []Input{longTermInput(), shortTermInput(), buyResellInput()} {
		first, err := engine.ComputeWithSchedule(in)
		if err != nil {
			t.Fatalf("%s: first Compute() error = %v", in.Mode, err)
		}
		second, err := engine.ComputeWithSchedule(in)
		if err != nil {
			t.Fatalf("%s: second Compute() error = %v", in.Mode, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: outputs differ between identical computations", in.Mode)
		}
	}
}

func TestComputeShortTermRental(t *testing.T) {
	tests := []struct {
		name         string
		policy       Policy
		wantRetained bool
	}{
		{name: "tourist tax passed through", policy: DefaultPolicy()},
		{name: "tourist tax retained", policy: Policy{TouristTax: TouristTaxRetained}, wantRetained: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.policy)
			out, err := engine.Compute(shortTermInput())
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			detail := out.Occupancy
			if detail == nil {
				t.Fatal("Occupancy detail is nil")
			}
			if out.FlatRent != nil {
				t.Error("FlatRent detail should not be set")
			}

			assertClose(t, "CapacityNights", detail.CapacityNights, 197.1, 1e-9)
			assertClose(t, "OccupiedNights", detail.OccupiedNights, 197.1, 1e-9)
			if !detail.TargetCapped {
				t.Error("TargetCapped = false, want true")
			}
			assertClose(t, "Stays", detail.Stays, 65.7, 1e-9)
			assertClose(t, "GrossLodgingRevenue", detail.GrossLodgingRevenue, 19710, 0.001)
			assertClose(t, "TouristTax", detail.TouristTax, 591.3, 0.001)
			assertClose(t, "PlatformFees", detail.PlatformFees, 2956.5, 0.001)
			assertClose(t, "ManagementFees", detail.ManagementFees, 3942, 0.001)
			assertClose(t, "VariableCosts", detail.VariableCosts, 1971, 0.001)
			assertClose(t, "ChannelManagerFees", detail.ChannelManagerFees, 120, 0.001)

			net := 19710 - 2956.5 - 3942 - 1971 - 120.0
			assertClose(t, "NetLodgingRevenue", detail.NetLodgingRevenue, net, 0.001)

			want := net
			if tt.wantRetained {
				want += 591.3
			}
			if detail.TouristTaxRetained != tt.wantRetained {
				t.Errorf("TouristTaxRetained = %v, want %v", detail.TouristTaxRetained, tt.wantRetained)
			}
			assertClose(t, "GrossRevenueAnnual", out.GrossRevenueAnnual, want, 0.001)
			assertClose(t, "GrossRevenueMonthly", out.GrossRevenueMonthly, want/12, 0.006)
		})
	}
}

func TestComputeBuyResell(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	out, err := engine.Compute(buyResellInput())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if out.GrossRevenueMonthly != 0 || out.GrossRevenueAnnual != 0 {
		t.Errorf("gross revenue = %.2f/%.2f, want 0", out.GrossRevenueMonthly, out.GrossRevenueAnnual)
	}
	if out.FlatRent != nil || out.Occupancy != nil || out.Resale != nil {
		t.Error("no mode detail should be set without a resale record")
	}
	if out.TaxAnnual != 0 {
		t.Errorf("TaxAnnual = %.2f, want 0 for a loss", out.TaxAnnual)
	}
	assertClose(t, "CashFlowMonthly", out.CashFlowMonthly, -out.TotalOutflowMonthly-out.MonthlyPayment, 0.011)
	if out.ReturnOnInvestmentPercent >= 0 {
		t.Errorf("ReturnOnInvestmentPercent = %.2f, want negative", out.ReturnOnInvestmentPercent)
	}
}

func TestComputeBuyResellWithResale(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	in := buyResellInput()
	in.Resale = &Resale{ExpectedResalePrice: 300000, HoldingYears: 5, ResaleCostPercent: 5}

	out, err := engine.ComputeWithSchedule(in)
	if err != nil {
		t.Fatalf("ComputeWithSchedule() error = %v", err)
	}
	detail := out.Resale
	if detail == nil {
		t.Fatal("Resale detail is nil")
	}

	assertClose(t, "ResaleCosts", detail.ResaleCosts, 15000, 0.001)
	assertClose(t, "RemainingPrincipal", detail.RemainingPrincipal, loans.RemainingPrincipalAfter(out.Schedule, 60), 0.001)
	assertClose(t, "NetProceeds", detail.NetProceeds, 285000-detail.RemainingPrincipal, 0.011)
	assertClose(t, "CapitalGain", detail.CapitalGain, 65000, 0.001)

	interest := 0.0
	for _, payment := range out.Schedule[:60] {
		interest += payment.Interest
	}
	assertClose(t, "HoldingCosts", detail.HoldingCosts, 5*out.TotalOutflowAnnual+interest, 0.011)
	assertClose(t, "ProjectedProfit", detail.ProjectedProfit, detail.CapitalGain-detail.HoldingCosts, 0.011)
	if out.GrossRevenueAnnual != 0 {
		t.Errorf("GrossRevenueAnnual = %.2f, want 0", out.GrossRevenueAnnual)
	}
}

func TestComputeOverfunded(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	in := longTermInput()
	in.Financing.DownPayment = 300000

	out, err := engine.ComputeWithSchedule(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !out.Overfunded {
		t.Error("Overfunded = false, want true")
	}
	if out.PrincipalFinanced != 0 || out.MonthlyPayment != 0 || out.TotalInterestOverTerm != 0 {
		t.Errorf("financing = %.2f/%.2f/%.2f, want zeros", out.PrincipalFinanced, out.MonthlyPayment, out.TotalInterestOverTerm)
	}
	if len(out.Schedule) != 0 {
		t.Errorf("len(Schedule) = %d, want 0", len(out.Schedule))
	}
	assertClose(t, "TotalCashInvested", out.TotalCashInvested, 220000, 0.001)
}

func TestComputeInterestDeductionPolicy(t *testing.T) {
	tests := []struct {
		name      string
		deduction InterestDeduction
	}{
		{"first year", DeductFirstYearInterest},
		{"average", DeductAverageInterest},
		{"none", DeductNoInterest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, Policy{InterestDeduction: tt.deduction})
			out, err := engine.Compute(longTermInput())
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}

			var want float64
			switch tt.deduction {
			case DeductFirstYearInterest:
				want = out.FirstYearInterest
			case DeductAverageInterest:
				want = out.TotalInterestOverTerm / 20
			}
			assertClose(t, "DeductibleInterest", out.DeductibleInterest, want, 0.011)
			assertClose(t, "TaxableResultAnnual", out.TaxableResultAnnual, 7560-want, 0.011)
		})
	}
}

func TestComputeRenovationProgress(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	in := longTermInput()
	in.Acquisition.RenovationEstimated = 10000
	in.Acquisition.RenovationRemaining = 2500

	out, err := engine.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	assertClose(t, "RenovationProgressPercent", out.RenovationProgressPercent, 75, 0.001)
}

func TestComputeDefaultsMissingPeriodToAnnual(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	in := longTermInput()
	in.Charges.PropertyTax = period.Charge{Amount: 1200}

	out, err := engine.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	assertClose(t, "Outflows.PropertyTax", out.Outflows.PropertyTax, 1200, 0.001)
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Input)
		wantErr error
	}{
		{
			name:    "negative agency price",
			modify:  func(in *Input) { in.Acquisition.AgencyPrice = -1 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative utilities",
			modify:  func(in *Input) { in.Charges.Utilities = -50 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "non-finite rent",
			modify:  func(in *Input) { in.FlatRent.GrossRentExcludingCharges = math.NaN() },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative paired charge",
			modify:  func(in *Input) { in.Charges.CondoFees.Amount = -10 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown period",
			modify:  func(in *Input) { in.Charges.CondoFees.Period = "weekly" },
			wantErr: period.ErrInvalidPeriod,
		},
		{
			name:    "zero term with principal",
			modify:  func(in *Input) { in.Financing.LoanTermYears = 0 },
			wantErr: ErrInvalidLoanTerms,
		},
		{
			name:    "negative term",
			modify:  func(in *Input) { in.Financing.LoanTermYears = -5 },
			wantErr: ErrInvalidLoanTerms,
		},
		{
			name:    "unknown mode",
			modify:  func(in *Input) { in.Mode = "timeshare" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "long term without flat rent",
			modify:  func(in *Input) { in.FlatRent = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "long term with occupancy",
			modify:  func(in *Input) { in.Occupancy = &Occupancy{} },
			wantErr: ErrInvalidInput,
		},
		{
			name: "buy resell with flat rent",
			modify: func(in *Input) {
				in.Mode = BuyResell
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "negative holding period",
			modify: func(in *Input) {
				in.Mode = BuyResell
				in.FlatRent = nil
				in.Resale = &Resale{HoldingYears: -1}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "no cash invested",
			modify: func(in *Input) {
				in.Acquisition.NotaryFeePercent = 0
				in.Acquisition.RenovationCost = 0
				in.Financing.DownPayment = 0
			},
			wantErr: ErrDivisionByZeroInvestment,
		},
	}

	engine := newTestEngine(t, DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := longTermInput()
			tt.modify(&in)

			out, err := engine.Compute(in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Compute() error = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("Compute() returned a partial output alongside an error")
			}
			if !IsValidation(err) {
				t.Errorf("IsValidation(%v) = false, want true", err)
			}
		})
	}
}

func TestComputeClampsPercentages(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	in := shortTermInput()
	in.Occupancy.AvailabilityRatePercent = 150
	in.Occupancy.AverageOccupancyRatePercent = 100
	in.Occupancy.TargetNightsPerYear = 400

	out, err := engine.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	assertClose(t, "OccupiedNights", out.Occupancy.OccupiedNights, 365, 1e-9)
}

func TestNewEngineRejectsUnknownPolicy(t *testing.T) {
	if _, err := NewEngine(nil, Policy{InterestDeduction: "quarterly"}); err == nil {
		t.Error("NewEngine() error = nil, want error for unknown deduction policy")
	}
	if _, err := NewEngine(nil, Policy{TouristTax: "kept"}); err == nil {
		t.Error("NewEngine() error = nil, want error for unknown tourist tax treatment")
	}
}

func TestOutputClone(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())
	out, err := engine.ComputeWithSchedule(longTermInput())
	if err != nil {
		t.Fatalf("ComputeWithSchedule() error = %v", err)
	}

	clone := out.Clone()
	clone.FlatRent.RentIncludingChargesMonthly = 0
	clone.Schedule[0].Interest = 0

	if out.FlatRent.RentIncludingChargesMonthly == 0 || out.Schedule[0].Interest == 0 {
		t.Error("Clone() shares memory with the original output")
	}
	if (*Output)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}
