package utils

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	zeroTokenBalance = "0.000000"
	tinyTokenBalance = "< 0.000001"
	zeroUSDValue     = "$0.00"
	tinyUSDValue     = "< $0.01"
)

// MaxTokenDecimals bounds the decimals accepted from indexer responses; ERC-20 decimals is a uint8.
const MaxTokenDecimals = math.MaxUint8

var (
	minTokenBalance = decimal.New(1, -6)
	minUSDValue     = decimal.New(1, -2)
)

// FormatTokenBalance scales a raw integer balance by decimals and renders it with six places.
// Positive values below 0.000001 are shown as "< 0.000001"; unparseable input as "0.000000".
func FormatTokenBalance(rawBalance string, decimals int) string {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(rawBalance), 10)
	if !ok || !validDecimals(decimals) {
		return zeroTokenBalance
	}
	value := decimal.NewFromBigInt(amount, -int32(decimals))
	if value.IsPositive() && value.LessThan(minTokenBalance) {
		return tinyTokenBalance
	}
	return value.StringFixed(6)
}

func validDecimals(decimals int) bool {
	return decimals >= 0 && decimals <= MaxTokenDecimals
}

// FormatUSDValue renders a dollar amount with two places.
// Absent, zero or non-finite values are "$0.00"; positive values under a cent are "< $0.01".
func FormatUSDValue(value *float64) string {
	if value == nil || *value == 0 || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return zeroUSDValue
	}
	d := decimal.NewFromFloat(*value)
	if d.IsPositive() && d.LessThan(minUSDValue) {
		return tinyUSDValue
	}
	return "$" + d.StringFixed(2)
}

// CalculateValueUSD multiplies a raw token amount by a unit price.
// Returns nil when either side is missing.
func CalculateValueUSD(amount *big.Int, decimals int, priceUSD *float64) *float64 {
	if amount == nil || priceUSD == nil || !validDecimals(decimals) || math.IsNaN(*priceUSD) || math.IsInf(*priceUSD, 0) {
		return nil
	}
	value, _ := decimal.NewFromBigInt(amount, -int32(decimals)).
		Mul(decimal.NewFromFloat(*priceUSD)).
		Float64()
	return &value
}

// FormatFloat renders a float with a fixed number of places.
func FormatFloat(value float64, places int32) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromFloat(value).StringFixed(places)
}
