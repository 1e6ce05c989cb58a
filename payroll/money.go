/*
money.go - Monetary and hour arithmetic helpers

PURPOSE:
  All quantities in the engine are decimal.Decimal to avoid floating-point
  drift. Rounding happens at each named formula boundary, never on
  accumulated unrounded values:
    - money: 2 decimal places, half-up
    - hour totals: 1 decimal place, half-up

SEE ALSO:
  - calculator.go: Applies RoundMoney at every sub-total
  - attendance.go: Applies RoundHours to per-record and summed hours
*/
package payroll

import "github.com/shopspring/decimal"

var (
	// Eight hours is both the normal working window length and the
	// daily-rate divisor for hourly rates.
	EightHours = decimal.NewFromInt(8)

	sixty = decimal.NewFromInt(60)
)

// RoundMoney rounds a monetary amount to 2 decimal places, half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// RoundHours rounds an hour total to 1 decimal place, half-up.
func RoundHours(d decimal.Decimal) decimal.Decimal { return d.Round(1) }

// ClampZero returns zero for negative amounts, the amount otherwise.
// Negative balances and negative day/hour counts are clamped, not errors.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// MinutesToHours converts a minute count to hours, rounded to 1 decimal.
func MinutesToHours(minutes int) decimal.Decimal {
	return RoundHours(decimal.NewFromInt(int64(minutes)).Div(sixty))
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Used for persisted values that were written by this engine and are
// therefore already well-formed.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
