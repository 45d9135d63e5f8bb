package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/rental-projection/pkg/constants"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range OutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s", strings.Join(OutputFormats, ", "), format)
}

// ValidateCurrencySymbol checks that a currency symbol is short enough to
// prefix amounts.
func ValidateCurrencySymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("currency symbol must not be empty")
	}
	if n := utf8.RuneCountInString(symbol); n > 3 {
		return fmt.Errorf("currency symbol %q is %d characters long, expected at most 3", symbol, n)
	}
	return nil
}
