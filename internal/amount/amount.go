// Package amount provides fixed-point conversion and display formatting for
// token balances and conversion estimates.
package amount

import (
	"math/big"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// BalanceDecimals is the default minor-unit precision for the platform token.
const BalanceDecimals = 18

// displayPlaces is the number of fractional digits shown to the user.
const displayPlaces = 2

// FromMinorUnits converts a raw integer amount in minor units to a decimal.
// For example, 1500000000000000000 with 18 decimals returns 1.5.
func FromMinorUnits(raw *big.Int, decimals int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)) // #nosec G115 -- decimals is a small constant
}

// FormatBalance formats raw minor units to two fractional digits with group
// separators. Rounding is half-up (half away from zero): 1.235 formats as
// "1.24".
func FormatBalance(raw *big.Int, decimals int) string {
	v := FromMinorUnits(raw, decimals)
	return grouped(v.Round(displayPlaces))
}

// FloorToCents floors a value to two decimal places: multiply by 100, floor,
// divide by 100. 1.239 floors to 1.23, never 1.24.
func FloorToCents(v decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return v.Mul(hundred).Floor().Div(hundred)
}

// FormatEstimate formats a conversion estimate for display: floored to cents,
// then grouped. A zero value formats as "0" rather than "0.00".
func FormatEstimate(v decimal.Decimal) string {
	floored := FloorToCents(v)
	if floored.IsZero() {
		return "0"
	}
	return grouped(floored)
}

// grouped renders a decimal with thousands separators and two fractional digits.
func grouped(v decimal.Decimal) string {
	ac := accounting.Accounting{Symbol: "", Precision: displayPlaces}
	return ac.FormatMoneyDecimal(v)
}
