// Package constants provides shared constants for the rental-projection application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerYear is the number of nights a property can be let in a year
	DaysPerYear = 365.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// MaxReportableROI bounds the reported return on investment, matching a
	// DECIMAL(6,2) column.
	MaxReportableROI = 9999.99

	// LongLoanTermWarningYears is the term above which a configuration warning is emitted
	LongLoanTermWarningYears = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON emits the raw projection records
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default portfolio file name
	DefaultConfigFile = "portfolio.yaml"

	// ExampleConfigFile is the example portfolio file name
	ExampleConfigFile = "portfolio.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides read through viper
	EnvPrefix = "RENTAL"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum JSON request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultDatabasePath is the default SQLite database location
	DefaultDatabasePath = "rental-projection.db"

	// DefaultRateLimitPerSecond is the default sustained request rate
	DefaultRateLimitPerSecond = 10.0

	// DefaultRateLimitBurst is the default request burst
	DefaultRateLimitBurst = 30

	// DefaultRefreshSchedule is the default cron spec for recomputing stored projections
	DefaultRefreshSchedule = "@daily"

	// DefaultCurrencySymbol is used when formatting amounts
	DefaultCurrencySymbol = "€"
)
