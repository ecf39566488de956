package fieldcrypt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits monetary values are
// fixed to before encryption.
const AmountPlaces = 2

// FormatAmount renders d as a fixed 2-decimal string, rounding half away
// from zero (19.999 -> "20.00", -0.005 -> "-0.01").
// Monetary values must go through FormatAmount before encryption; floats are
// never encrypted directly.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(AmountPlaces).StringFixed(AmountPlaces)
}

// ParseAmount parses a decimal string such as "19.999" or "-12".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// AmountFromFloat converts a legacy float column value using its shortest
// decimal representation, so 19.999 stays 19.999 before rounding.
func AmountFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
