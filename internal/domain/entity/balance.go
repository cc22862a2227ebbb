package entity

import (
	"math/big"
	"time"
)

// TokenBalanceSnapshot represents the TIME balance of a wallet as reported by the indexing API.
type TokenBalanceSnapshot struct {
	WalletAddress     string    `json:"walletAddress"`
	NetworkID         string    `json:"networkId"`
	TokenAddress      string    `json:"tokenAddress"`
	Name              string    `json:"name"`
	Symbol            string    `json:"symbol"`
	Logo              string    `json:"logo,omitempty"`
	Decimals          int       `json:"decimals"`
	RawBalance        string    `json:"rawBalance"`
	Amount            *big.Int  `json:"-"`
	PriceUSD          *float64  `json:"priceUsd,omitempty"`
	ValueUSD          *float64  `json:"valueUsd,omitempty"`
	PossibleSpam      bool      `json:"possibleSpam"`
	VerifiedContract  bool      `json:"verifiedContract"`
	FormattedBalance  string    `json:"formattedBalance"`
	FormattedValueUSD string    `json:"formattedValueUsd"`
	FetchedAt         time.Time `json:"fetchedAt"`
}

// BalanceDisplay holds the strings shown for the balance card.
type BalanceDisplay struct {
	Amount string `json:"amount"`
	Value  string `json:"value"`
}

// NoDataLabel is shown when a fetch returned nothing for the wallet.
const NoDataLabel = "No Data"
