package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/period"
)

const testPortfolio = `
logging:
  level: debug
output:
  format: csv
policy:
  interestDeduction: average
properties:
  - name: Flat on Main
    city: Lyon
    mode: lld
    acquisition:
      agencyPrice: "185 000"
      agencyFee: 5000
      notaryFeePercent: "7,5 %"
      renovationCost: 10000
      renovationEstimated: 12000
      renovationRemaining: 3000
    financing:
      loanRatePercent: "3,2%"
      loanTermYears: 19.6
      downPayment: 20000
      borrowerInsuranceMonthly: 25
    charges:
      propertyTax:
        amount: 1100
      condoFees:
        amount: "95,50"
        period: Monthly
      utilities: 300
    taxation:
      marginalRatePercent: 30
      socialContributionPercent: 17.2
    flatRent:
      grossRentExcludingCharges: "850 €"
      recoverableChargesBilled: 60
  - name: Beach studio
    mode: lcd
    acquisition:
      agencyPrice: 120000
      notaryFeePercent: 8
    financing:
      loanRatePercent: 3
      loanTermYears: 35
      downPayment: 10000
    occupancy:
      nightlyPrice: 90
      targetNightsPerYear: 250
      averageStayLengthNights: 4
      availabilityRatePercent: 80
      averageOccupancyRatePercent: 70
  - name: Sold already
    mode: av
    active: false
    acquisition:
      agencyPrice: 90000
`

func loadTestPortfolio(t *testing.T) *Configuration {
	t.Helper()
	conf, err := LoadConfigurationFromReader(strings.NewReader(testPortfolio))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	return conf
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Portfolio file",
			configPath: "portfolio.yaml",
			wantError:  false,
		},
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "portfolio.yaml"), []byte(testPortfolio), 0o600); err != nil {
		t.Fatalf("failed to write portfolio: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(filepath.Join(dir, tt.configPath))
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if len(config.Properties) != 3 {
				t.Errorf("LoadConfiguration() loaded %d properties, want 3", len(config.Properties))
			}
		})
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("properties: []\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Logging.Level != "info" || conf.Output.Format != "pretty" || conf.Output.Currency != "€" {
		t.Errorf("defaults = %+v %+v", conf.Logging, conf.Output)
	}
	policy, err := conf.EnginePolicy()
	if err != nil {
		t.Fatalf("EnginePolicy() error = %v", err)
	}
	if policy != projection.DefaultPolicy() {
		t.Errorf("EnginePolicy() = %+v, want default", policy)
	}
}

func TestLoadExampleConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if len(conf.Properties) != 3 {
		t.Fatalf("len(Properties) = %d, want 3", len(conf.Properties))
	}
	if _, err := conf.EnginePolicy(); err != nil {
		t.Fatalf("EnginePolicy() error = %v", err)
	}

	active := conf.ActiveProperties()
	if len(active) != 2 {
		t.Fatalf("len(ActiveProperties()) = %d, want 2", len(active))
	}
	for _, property := range active {
		if _, err := property.ToInput(); err != nil {
			t.Errorf("%s: ToInput() error = %v", property.Name, err)
		}
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("RENTAL_OUTPUT_FORMAT", "json")
	conf := loadTestPortfolio(t)
	if conf.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want env override json", conf.Output.Format)
	}
}

func TestLoadConfigurationRejectsBadAmount(t *testing.T) {
	_, err := LoadConfigurationFromReader(strings.NewReader(`
properties:
  - name: Broken
    mode: lld
    acquisition:
      agencyPrice: "a lot"
`))
	if err == nil {
		t.Error("LoadConfigurationFromReader() expected error for an unparseable amount")
	}
}

func TestToInputLenientParsing(t *testing.T) {
	conf := loadTestPortfolio(t)

	in, err := conf.Properties[0].ToInput()
	if err != nil {
		t.Fatalf("ToInput() error = %v", err)
	}

	if in.Mode != projection.LongTermRental {
		t.Errorf("Mode = %s, want %s", in.Mode, projection.LongTermRental)
	}
	if in.Acquisition.AgencyPrice != 185000 {
		t.Errorf("AgencyPrice = %v, want 185000", in.Acquisition.AgencyPrice)
	}
	if in.Acquisition.NotaryFeePercent != 7.5 {
		t.Errorf("NotaryFeePercent = %v, want 7.5", in.Acquisition.NotaryFeePercent)
	}
	if in.Financing.LoanRatePercent != 3.2 {
		t.Errorf("LoanRatePercent = %v, want 3.2", in.Financing.LoanRatePercent)
	}
	if in.Financing.LoanTermYears != 20 {
		t.Errorf("LoanTermYears = %d, want 20", in.Financing.LoanTermYears)
	}
	if want := (period.Charge{Amount: 95.5, Period: period.Monthly}); in.Charges.CondoFees != want {
		t.Errorf("CondoFees = %+v, want %+v", in.Charges.CondoFees, want)
	}
	if in.Charges.PropertyTax.Period != period.Annual {
		t.Errorf("PropertyTax.Period = %q, want annual", in.Charges.PropertyTax.Period)
	}
	if in.FlatRent == nil || in.FlatRent.GrossRentExcludingCharges != 850 {
		t.Errorf("FlatRent = %+v", in.FlatRent)
	}
	if in.Occupancy != nil || in.Resale != nil {
		t.Error("only the flat rent record should be set")
	}

	engine, err := projection.NewEngine(nil, projection.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if _, err := engine.Compute(in); err != nil {
		t.Errorf("Compute() error = %v", err)
	}
}

func TestToInputUnknownMode(t *testing.T) {
	_, err := PropertyConfig{Name: "Odd", Mode: "timeshare"}.ToInput()
	if err == nil || !strings.Contains(err.Error(), "Odd") {
		t.Errorf("ToInput() error = %v, want error naming the property", err)
	}
}

func TestActiveProperties(t *testing.T) {
	conf := loadTestPortfolio(t)
	active := conf.ActiveProperties()
	if len(active) != 2 {
		t.Fatalf("len(ActiveProperties()) = %d, want 2", len(active))
	}
	for _, property := range active {
		if property.Name == "Sold already" {
			t.Error("inactive property returned")
		}
	}
}

func TestEnginePolicy(t *testing.T) {
	conf := loadTestPortfolio(t)
	policy, err := conf.EnginePolicy()
	if err != nil {
		t.Fatalf("EnginePolicy() error = %v", err)
	}
	if policy.InterestDeduction != projection.DeductAverageInterest {
		t.Errorf("InterestDeduction = %s, want average", policy.InterestDeduction)
	}

	conf.Policy.TouristTax = "kept"
	if _, err := conf.EnginePolicy(); err == nil {
		t.Error("EnginePolicy() expected error for an unknown tourist tax treatment")
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := loadTestPortfolio(t)
	warnings := conf.ValidateConfiguration()

	// The studio has a 35 year loan and targets more nights than it can fill.
	if len(warnings) != 2 {
		t.Fatalf("ValidateConfiguration() = %v, want 2 warnings", warnings)
	}
	for _, warning := range warnings {
		if !strings.Contains(warning, "Beach studio") {
			t.Errorf("unexpected warning %q", warning)
		}
	}
}

func TestFromInputRoundTrip(t *testing.T) {
	conf := loadTestPortfolio(t)
	for _, property := range conf.ActiveProperties() {
		want, err := property.ToInput()
		if err != nil {
			t.Fatalf("ToInput() error = %v", err)
		}
		got, err := FromInput(property.Name, property.City, want).ToInput()
		if err != nil {
			t.Fatalf("ToInput() after FromInput() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: round trip = %+v, want %+v", property.Name, got, want)
		}
	}
}
