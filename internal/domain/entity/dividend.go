package entity

import (
	"math/big"
	"time"
)

// DividendSnapshot holds the on-chain dividend position of a wallet.
type DividendSnapshot struct {
	WalletAddress         string    `json:"walletAddress"`
	NetworkID             string    `json:"networkId"`
	ContractAddress       string    `json:"contractAddress"`
	ClaimableDividend     *big.Int  `json:"-"`
	TotalDividendsClaimed *big.Int  `json:"-"`
	TokenBalance          *big.Int  `json:"-"`
	Decimals              uint8     `json:"decimals"`
	FetchedAt             time.Time `json:"fetchedAt"`
}

// DividendDisplay is the formatted view of a DividendSnapshot.
type DividendDisplay struct {
	ClaimableAmount string `json:"claimableAmount"`
	TotalClaimed    string `json:"totalClaimed"`
	TokenBalance    string `json:"timeBalance"`
	HasDividends    bool   `json:"hasDividends"`
	HasTokens       bool   `json:"hasTokens"`
}

// DividendReportRow is one line of the watchlist report.
type DividendReportRow struct {
	WalletAddress string          `json:"walletAddress"`
	NetworkID     string          `json:"networkId"`
	Display       DividendDisplay `json:"display"`
}

// ReportError describes a wallet that could not be read for the report.
type ReportError struct {
	WalletAddress string `json:"walletAddress"`
	NetworkID     string `json:"networkId"`
	Message       string `json:"message"`
}
