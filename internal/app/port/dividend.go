package port

import (
	"context"

	"time_dividends/internal/domain/entity"
)

// BalanceService fetches the TIME balance and its USD value from the indexing API.
type BalanceService interface {
	// FetchTokenBalance returns nil without error when the wallet holds no TIME.
	FetchTokenBalance(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.TokenBalanceSnapshot, error)
}

// DividendService reads the dividend position of a wallet from the TIME contract.
type DividendService interface {
	FetchDividendData(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.DividendSnapshot, error)
}

// StatePublisher receives every view state the coordinator applies.
type StatePublisher interface {
	Publish(sessionID string, state entity.ViewState)
}
