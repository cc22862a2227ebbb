package abiloader

import (
	"bytes"
	_ "embed"
	"fmt"

	"time_dividends/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/time_dividend.json
var defaultTimeDividendABI []byte

// Contract method names used by the dividend and transaction services.
const (
	MethodBalanceOf                 = "balanceOf"
	MethodDecimals                  = "decimals"
	MethodClaimableDividendOf       = "claimableDividendOf"
	MethodCumulativeDividendClaimed = "cumulativeDividendClaimed"
	MethodMagnifiedDividendPerShare = "magnifiedDividendPerShare"
	MethodClaimDividend             = "claimDividend"
	MethodTransfer                  = "transfer"
)

// RequiredMethods must all be present in a loaded ABI.
var RequiredMethods = []string{
	MethodBalanceOf,
	MethodDecimals,
	MethodClaimableDividendOf,
	MethodCumulativeDividendClaimed,
	MethodMagnifiedDividendPerShare,
	MethodClaimDividend,
	MethodTransfer,
}

// ABIFileLoader loads the TIME dividend contract ABI, from a file when configured
// and from the embedded copy otherwise.
type ABIFileLoader struct {
	path       string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewABILoader creates a new ABIFileLoader. An empty path selects the embedded ABI.
func NewABILoader(path string, loggerInfo func(msg string, args ...any), loggerWarn func(msg string, args ...any)) *ABIFileLoader {
	return &ABIFileLoader{path: path, loggerInfo: loggerInfo, loggerWarn: loggerWarn}
}

// LoadContractABI parses and validates the ABI.
func (l *ABIFileLoader) LoadContractABI() (*abi.ABI, error) {
	source := "embedded"
	data := defaultTimeDividendABI

	fileData, found, err := utils.ReadOptionalFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI file %s: %w", l.path, err)
	}
	if found {
		data, source = fileData, l.path
	} else if l.path != "" && l.loggerWarn != nil {
		l.loggerWarn("ABI file not found, using embedded ABI", "path", l.path)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid ABI from %s: %w", source, err)
	}
	if l.loggerInfo != nil {
		l.loggerInfo("Contract ABI loaded", "source", source, "methods", len(parsed.Methods))
	}
	return parsed, nil
}

// Parse decodes an ABI and checks that every required method exists.
func Parse(data []byte) (*abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for _, m := range RequiredMethods {
		if _, ok := parsed.Methods[m]; !ok {
			return nil, fmt.Errorf("method %s missing", m)
		}
	}
	return &parsed, nil
}

// DefaultABI returns the embedded ABI. It panics only if the embedded file is broken.
func DefaultABI() *abi.ABI {
	parsed, err := Parse(defaultTimeDividendABI)
	if err != nil {
		panic(fmt.Sprintf("embedded TIME dividend ABI is invalid: %v", err))
	}
	return parsed
}
