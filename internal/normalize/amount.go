// Package normalize converts raw export cells into typed values.
//
// None of the functions here return errors: bookkeeping exports are noisy and a
// cell that cannot be read is treated as absent, leaving the decision to skip a
// row to the parser that owns it.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// euDecimalSuffix matches a comma used as decimal separator ("1.185,80", "-907,5")
var euDecimalSuffix = regexp.MustCompile(`,\d{1,2}$`)

// ParseAmount parses EU ("1.234,56") and US ("1234.56") formatted amounts.
// Empty or unparseable input yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	if strings.Contains(s, ",") && euDecimalSuffix.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseMoney is ParseAmount followed by Round2
func ParseMoney(s string) decimal.Decimal {
	return Round2(ParseAmount(s))
}
