package entity

import "time"

// Wallet represents a watched wallet address loaded from the watchlist file.
type Wallet struct {
	Address string `json:"address" yaml:"address"`
}

// WalletSession is the connection state of one wallet.
type WalletSession struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	ChainID   uint64    `json:"chainId"`
	Connected bool      `json:"connected"`
	CanSign   bool      `json:"canSign"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
