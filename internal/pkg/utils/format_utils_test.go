package utils

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTokenBalance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		want     string
	}{
		{name: "whole tokens", raw: "1000000000000000000", decimals: 18, want: "1.000000"},
		{name: "fractional", raw: "1234567890000000000", decimals: 18, want: "1.234568"},
		{name: "zero", raw: "0", decimals: 18, want: "0.000000"},
		{name: "below display threshold", raw: "500", decimals: 18, want: "< 0.000001"},
		{name: "exactly threshold", raw: "1000000000000", decimals: 18, want: "0.000001"},
		{name: "no decimals", raw: "42", decimals: 0, want: "42.000000"},
		{name: "garbage", raw: "not-a-number", decimals: 18, want: "0.000000"},
		{name: "empty", raw: "", decimals: 18, want: "0.000000"},
		{name: "negative decimals", raw: "10", decimals: -1, want: "0.000000"},
		{name: "max uint8 decimals", raw: "10", decimals: 255, want: "< 0.000001"},
		{name: "decimals above uint8", raw: "10", decimals: 256, want: "0.000000"},
		{name: "decimals wrapping int32", raw: "10", decimals: math.MaxInt, want: "0.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTokenBalance(tt.raw, tt.decimals))
		})
	}
}

func TestFormatUSDValue(t *testing.T) {
	assert.Equal(t, "$0.00", FormatUSDValue(nil))
	assert.Equal(t, "$0.00", FormatUSDValue(Float64Ptr(0)))
	assert.Equal(t, "$0.00", FormatUSDValue(Float64Ptr(math.NaN())))
	assert.Equal(t, "$0.00", FormatUSDValue(Float64Ptr(math.Inf(1))))
	assert.Equal(t, "< $0.01", FormatUSDValue(Float64Ptr(0.004)))
	assert.Equal(t, "$0.01", FormatUSDValue(Float64Ptr(0.01)))
	assert.Equal(t, "$1234.50", FormatUSDValue(Float64Ptr(1234.5)))
}

func TestFormatDividendAmount(t *testing.T) {
	amount, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", FormatDividendAmount(amount, 18))
	assert.Equal(t, "0", FormatDividendAmount(nil, 18))
	assert.Equal(t, "0", FormatDividendAmount(big.NewInt(0), 18))
	assert.Equal(t, "0.000000000000000001", FormatDividendAmount(big.NewInt(1), 18))
	assert.Equal(t, "2", FormatDividendAmount(big.NewInt(2), 0))
	assert.Equal(t, "12", FormatDividendAmount(big.NewInt(1200), 2))
}

func TestCalculateValueUSD(t *testing.T) {
	amount, _ := new(big.Int).SetString("2500000000000000000", 10)

	value := CalculateValueUSD(amount, 18, Float64Ptr(2))
	require.NotNil(t, value)
	assert.InDelta(t, 5.0, *value, 1e-9)

	assert.Nil(t, CalculateValueUSD(amount, 18, nil))
	assert.Nil(t, CalculateValueUSD(nil, 18, Float64Ptr(2)))
	assert.Nil(t, CalculateValueUSD(amount, 256, Float64Ptr(2)))
	assert.Nil(t, CalculateValueUSD(amount, math.MaxInt, Float64Ptr(2)))
}
