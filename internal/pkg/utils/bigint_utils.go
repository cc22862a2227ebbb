package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatBigInt converts a big.Int value to an exact decimal string,
// considering the given number of decimals. Trailing zeros are trimmed.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	// decimal.String trims trailing zeros and the dangling point.
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// FormatDividendAmount renders a dividend amount exactly, with no rounding.
// A nil amount is shown as "0".
func FormatDividendAmount(amount *big.Int, decimals uint8) string {
	return FormatBigInt(amount, decimals)
}

// IsPositive reports whether v is non-nil and greater than zero.
func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
