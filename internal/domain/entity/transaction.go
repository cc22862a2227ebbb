package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TransactionAction names the write operations on the dividend contract.
type TransactionAction string

const (
	ActionClaim TransactionAction = "claim"
	ActionSweep TransactionAction = "sweep"
)

// TransactionOutcome is the result of a claim or sweep.
// Success, a hash and an error message are reported together so callers
// can link a reverted transaction to the explorer.
type TransactionOutcome struct {
	Action    TransactionAction `json:"action"`
	NetworkID string            `json:"networkId,omitempty"`
	Success   bool              `json:"success"`
	TxHash    string            `json:"txHash,omitempty"`
	TxURL     string            `json:"txUrl,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ContractCall describes a single method call on a contract.
type ContractCall struct {
	Address common.Address
	ABI     *abi.ABI
	Method  string
	Args    []interface{}
	From    common.Address
	Value   *big.Int
}

// PreparedCall is a ContractCall that passed simulation and carries the packed calldata and gas limit.
type PreparedCall struct {
	ContractCall
	Data []byte
	Gas  uint64
}

// TransactionReceipt is the subset of a mined receipt the orchestrator needs.
type TransactionReceipt struct {
	TxHash      string `json:"txHash"`
	Status      uint64 `json:"status"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}

// ReceiptStatusSuccessful mirrors the EVM receipt status for a successful transaction.
const ReceiptStatusSuccessful uint64 = 1
