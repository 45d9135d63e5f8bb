package projection

import (
	"github.com/iwvelando/rental-projection/pkg/loans"
)

// Output is the full set of derived figures for one Input. It is always
// produced whole and is meant to replace any previously stored output.
type Output struct {
	Mode Mode `json:"mode"`

	TotalAcquisitionCost      float64 `json:"totalAcquisitionCost"`
	TotalCashInvested         float64 `json:"totalCashInvested"`
	PrincipalFinanced         float64 `json:"principalFinanced"`
	Overfunded                bool    `json:"overfunded"`
	RenovationProgressPercent float64 `json:"renovationProgressPercent"`

	MonthlyPayment        float64 `json:"monthlyPayment"`
	TotalInterestOverTerm float64 `json:"totalInterestOverTerm"`
	FirstYearInterest     float64 `json:"firstYearInterest"`
	DeductibleInterest    float64 `json:"deductibleInterest"`

	TotalOutflowMonthly float64 `json:"totalOutflowMonthly"`
	TotalOutflowAnnual  float64 `json:"totalOutflowAnnual"`
	GrossRevenueMonthly float64 `json:"grossRevenueMonthly"`
	GrossRevenueAnnual  float64 `json:"grossRevenueAnnual"`

	TaxableResultMonthly float64 `json:"taxableResultMonthly"`
	TaxableResultAnnual  float64 `json:"taxableResultAnnual"`
	TaxMonthly           float64 `json:"taxMonthly"`
	TaxAnnual            float64 `json:"taxAnnual"`

	CashFlowMonthly          float64 `json:"cashFlowMonthly"`
	CashFlowAnnual           float64 `json:"cashFlowAnnual"`
	CashFlowCumulative       float64 `json:"cashFlowCumulative"`
	NetNetCashFlowMonthly    float64 `json:"netNetCashFlowMonthly"`
	NetNetCashFlowAnnual     float64 `json:"netNetCashFlowAnnual"`
	NetNetCashFlowCumulative float64 `json:"netNetCashFlowCumulative"`

	ReturnOnInvestmentPercent float64 `json:"returnOnInvestmentPercent"`

	Outflows OutflowBreakdown `json:"outflows"`

	// Exactly one of the mode details is set, except for buy-resell without
	// a Resale record where none is.
	FlatRent  *FlatRentDetail  `json:"flatRent,omitempty"`
	Occupancy *OccupancyDetail `json:"occupancy,omitempty"`
	Resale    *ResaleDetail    `json:"resale,omitempty"`

	Schedule []loans.Payment `json:"schedule,omitempty"`
}

// FlatRentDetail reports the long-term rental revenue.
type FlatRentDetail struct {
	RentExcludingChargesMonthly float64 `json:"rentExcludingChargesMonthly"`
	ChargesBilledMonthly        float64 `json:"chargesBilledMonthly"`
	RentIncludingChargesMonthly float64 `json:"rentIncludingChargesMonthly"`
	RentIncludingChargesAnnual  float64 `json:"rentIncludingChargesAnnual"`
}

// OccupancyDetail reports how nightly revenue was derived, all annual.
type OccupancyDetail struct {
	CapacityNights      float64 `json:"capacityNights"`
	OccupiedNights      float64 `json:"occupiedNights"`
	TargetCapped        bool    `json:"targetCapped"`
	Stays               float64 `json:"stays"`
	GrossLodgingRevenue float64 `json:"grossLodgingRevenue"`
	TouristTax          float64 `json:"touristTax"`
	TouristTaxRetained  bool    `json:"touristTaxRetained"`
	PlatformFees        float64 `json:"platformFees"`
	ManagementFees      float64 `json:"managementFees"`
	VariableCosts       float64 `json:"variableCosts"`
	ChannelManagerFees  float64 `json:"channelManagerFees"`
	NetLodgingRevenue   float64 `json:"netLodgingRevenue"`
}

// ResaleDetail reports the projected exit of a buy-resell operation.
type ResaleDetail struct {
	HoldingYears       int     `json:"holdingYears"`
	ResalePrice        float64 `json:"resalePrice"`
	ResaleCosts        float64 `json:"resaleCosts"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
	NetProceeds        float64 `json:"netProceeds"`
	HoldingCosts       float64 `json:"holdingCosts"`
	CapitalGain        float64 `json:"capitalGain"`
	ProjectedProfit    float64 `json:"projectedProfit"`
}

// OutflowBreakdown lists the annualized operating outflows.
type OutflowBreakdown struct {
	PropertyTax        float64 `json:"propertyTax"`
	CondoFees          float64 `json:"condoFees"`
	OwnerInsurance     float64 `json:"ownerInsurance"`
	Utilities          float64 `json:"utilities"`
	Internet           float64 `json:"internet"`
	MaintenanceReserve float64 `json:"maintenanceReserve"`
	RecoverableCharges float64 `json:"recoverableCharges"`
	OtherOutflow       float64 `json:"otherOutflow"`
	BorrowerInsurance  float64 `json:"borrowerInsurance"`
}
