package payroll

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// numericPattern accepts the partial numeric text a clerk produces while
// typing: empty, a lone decimal point, or a plain decimal. Signs, commas
// and exponents are out.
var numericPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// ValidNumericText reports whether raw is acceptable in-progress numeric
// input.
func ValidNumericText(raw string) bool {
	return numericPattern.MatchString(raw)
}

// ParseAmount turns raw edit text into a decimal. Empty text and a lone
// "." both mean zero; text failing the pattern also computes as zero, with
// the row's Invalid flag carrying the problem to the caller.
func ParseAmount(raw string) decimal.Decimal {
	if raw == "" || raw == "." {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Recompute refreshes the derived fields from the raw text:
// total = kilo * rate, netTotal = total - deduction.
func Recompute(row *DraftRow) {
	row.Invalid = !ValidNumericText(row.Kilo) || !ValidNumericText(row.Rate) || !ValidNumericText(row.Deduction)
	row.Total = ParseAmount(row.Kilo).Mul(ParseAmount(row.Rate))
	row.NetTotal = row.Total.Sub(ParseAmount(row.Deduction))
}
