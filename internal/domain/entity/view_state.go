package entity

import "time"

// ViewState is everything a client needs to render the dividends screen for one session.
type ViewState struct {
	SessionID          string                `json:"sessionId"`
	Address            string                `json:"address"`
	NetworkID          string                `json:"networkId"`
	Generation         uint64                `json:"generation"`
	View               string                `json:"view"`
	Prompt             string                `json:"prompt,omitempty"`
	Balance            *TokenBalanceSnapshot `json:"balance,omitempty"`
	BalanceDisplay     BalanceDisplay        `json:"balanceDisplay"`
	BalanceUnavailable bool                  `json:"balanceUnavailable"`
	BalanceError       string                `json:"balanceError,omitempty"`
	Dividends          *DividendSnapshot     `json:"dividends,omitempty"`
	DividendDisplay    DividendDisplay       `json:"dividendDisplay"`
	DividendError      string                `json:"dividendError,omitempty"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}
