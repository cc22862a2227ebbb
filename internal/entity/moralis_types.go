package entity

import "strings"

// TokenBalance is one ERC20 entry of the wallet token balances endpoint.
// Numeric amounts are kept as strings to preserve precision.
type TokenBalance struct {
	TokenAddress     string   `json:"token_address"`
	Name             string   `json:"name"`
	Symbol           string   `json:"symbol"`
	Logo             string   `json:"logo,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	Decimals         int      `json:"decimals"`
	Balance          string   `json:"balance"`
	BalanceFormatted string   `json:"balance_formatted,omitempty"`
	UsdPrice         *float64 `json:"usd_price"`
	UsdValue         *float64 `json:"usd_value"`
	PossibleSpam     bool     `json:"possible_spam"`
	VerifiedContract bool     `json:"verified_contract"`
	NativeToken      bool     `json:"native_token,omitempty"`
}

// WalletTokensPage is the raw body of GET /wallets/{address}/tokens.
type WalletTokensPage struct {
	Cursor   string         `json:"cursor,omitempty"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Result   []TokenBalance `json:"result"`
}

// WalletTokenBalances is the client-side view of a wallet's balances on one chain.
type WalletTokenBalances struct {
	Address       string         `json:"address"`
	Chain         string         `json:"chain"`
	TokenBalances []TokenBalance `json:"tokenBalances"`
	TotalUSDValue float64        `json:"totalUsdValue"`
}

// FindToken returns the balance entry for tokenAddress (case-insensitive).
func (w *WalletTokenBalances) FindToken(tokenAddress string) (TokenBalance, bool) {
	if w == nil {
		return TokenBalance{}, false
	}
	for _, tb := range w.TokenBalances {
		if strings.EqualFold(tb.TokenAddress, tokenAddress) {
			return tb, true
		}
	}
	return TokenBalance{}, false
}

// TokenPrice is the body of GET /erc20/{address}/price.
type TokenPrice struct {
	TokenName         string  `json:"tokenName"`
	TokenSymbol       string  `json:"tokenSymbol"`
	TokenLogo         string  `json:"tokenLogo,omitempty"`
	TokenDecimals     string  `json:"tokenDecimals"`
	TokenAddress      string  `json:"tokenAddress"`
	UsdPrice          float64 `json:"usdPrice"`
	UsdPriceFormatted string  `json:"usdPriceFormatted,omitempty"`
	ExchangeName      string  `json:"exchangeName,omitempty"`
	PossibleSpam      bool    `json:"possibleSpam"`
	VerifiedContract  bool    `json:"verifiedContract"`
}

// APIError is the error body returned by the indexing API.
type APIError struct {
	Message string `json:"message"`
}
