// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/format"
	"github.com/iwvelando/rental-projection/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Result is the projection of one named property. Err is set instead of
// Output when the projection could not be computed.
type Result struct {
	Name   string             `json:"name"`
	City   string             `json:"city,omitempty"`
	Output *projection.Output `json:"output,omitempty"`
	Err    error              `json:"-"`
}

type line struct {
	label string
	value float64
}

func summaryLines(out *projection.Output) []line {
	return []line{
		{"Total acquisition cost", out.TotalAcquisitionCost},
		{"Cash invested", out.TotalCashInvested},
		{"Principal financed", out.PrincipalFinanced},
		{"Monthly payment", out.MonthlyPayment},
		{"Total interest", out.TotalInterestOverTerm},
		{"Gross revenue / month", out.GrossRevenueMonthly},
		{"Outflows / month", out.TotalOutflowMonthly},
		{"Tax / month", out.TaxMonthly},
		{"Cash flow / month", out.CashFlowMonthly},
		{"Cash flow / year", out.CashFlowAnnual},
		{"Net-net cash flow / month", out.NetNetCashFlowMonthly},
		{"Net-net cash flow / year", out.NetNetCashFlowAnnual},
		{"Net-net cash flow / term", out.NetNetCashFlowCumulative},
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, results []Result, currency string) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		if result.City != "" {
			_, _ = fmt.Fprintf(w, "--- Results for property %s (%s) ---\n", result.Name, result.City)
		} else {
			_, _ = fmt.Fprintf(w, "--- Results for property %s ---\n", result.Name)
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(w, "No projection available: %v\n", result.Err)
		} else if out := result.Output; out != nil {
			_, _ = fmt.Fprintf(w, "%-27s | %s\n", "Mode", out.Mode)
			for _, l := range summaryLines(out) {
				_, _ = fmt.Fprintf(w, "%-27s | %s\n", l.label, format.Currency(l.value, currency))
			}
			_, _ = fmt.Fprintf(w, "%-27s | %s\n", "Return on investment", format.Percent(out.ReturnOnInvestmentPercent))
			if out.Overfunded {
				_, _ = fmt.Fprintf(w, "Note: the down payment covers the whole acquisition\n")
			}
			if d := out.Occupancy; d != nil {
				_, _ = p.Fprintf(w, "%-27s | %.1f of %.1f available\n", "Occupied nights", d.OccupiedNights, d.CapacityNights)
			}
			if d := out.Resale; d != nil {
				_, _ = fmt.Fprintf(w, "%-27s | %s after %d years\n", "Projected resale profit", format.Currency(d.ProjectedProfit, currency), d.HoldingYears)
			}
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

var csvHeader = []string{
	"property", "mode", "total acquisition cost", "cash invested", "principal financed",
	"monthly payment", "total interest", "gross revenue monthly", "outflow monthly",
	"tax monthly", "cash flow monthly", "cash flow annual", "net-net cash flow monthly",
	"net-net cash flow annual", "net-net cash flow cumulative", "roi percent", "error",
}

// CsvFormat outputs one comma-separated row per property.
func CsvFormat(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		row := []string{result.Name}
		if result.Err != nil || result.Output == nil {
			row = append(row, make([]string, len(csvHeader)-2)...)
			reason := "no projection"
			if result.Err != nil {
				reason = result.Err.Error()
			}
			row = append(row, reason)
		} else {
			out := result.Output
			row = append(row, string(out.Mode))
			for _, l := range summaryLines(out) {
				row = append(row, amount(l.value))
			}
			row = append(row, amount(out.ReturnOnInvestmentPercent), "")
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// JSONFormat outputs the results as an indented JSON array.
func JSONFormat(w io.Writer, results []Result) error {
	type jsonResult struct {
		Result
		Error string `json:"error,omitempty"`
	}
	encoded := make([]jsonResult, len(results))
	for i, result := range results {
		encoded[i].Result = result
		if result.Err != nil {
			encoded[i].Error = result.Err.Error()
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(encoded)
}

// Format writes results in the named output format.
func Format(w io.Writer, outputFormat string, results []Result, currency string) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	default:
		PrettyFormat(w, results, currency)
		return nil
	}
}

// ScheduleFormat outputs an amortization schedule in the named format.
func ScheduleFormat(w io.Writer, outputFormat, name string, schedule []loans.Payment, currency string) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"property", "period", "payment", "principal", "interest", "remaining principal"}); err != nil {
			return err
		}
		for _, payment := range schedule {
			row := []string{
				name, strconv.Itoa(payment.Period),
				amount(payment.Payment), amount(payment.Principal),
				amount(payment.Interest), amount(payment.RemainingPrincipal),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	case constants.OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(schedule)
	}

	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- Amortization schedule for property %s ---\n", name)
	_, _ = fmt.Fprintf(w, "Period | Payment | Principal | Interest | Remaining\n")
	_, _ = fmt.Fprintf(w, "______ | _______ | _________ | ________ | _________\n")
	for _, payment := range schedule {
		_, _ = p.Fprintf(w, "%6d | %s%.2f | %s%.2f | %s%.2f | %s%.2f\n",
			payment.Period,
			currency, payment.Payment,
			currency, payment.Principal,
			currency, payment.Interest,
			currency, payment.RemainingPrincipal,
		)
	}
	return nil
}

func amount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
