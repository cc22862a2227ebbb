package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"
)

const defaultReceiptPollInterval = 2 * time.Second

// EVMClient implements the port.ContractClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient           *ethclient.Client
	netDef              entity.NetworkDescriptor
	rpcCallTimeout      time.Duration
	receiptPollInterval time.Duration
	limiter             *rate.Limiter
}

// EVMClientOptions tune a single client. Zero values fall back to defaults.
type EVMClientOptions struct {
	ConnectionTimeout   time.Duration
	RPCCallTimeout      time.Duration
	ReceiptPollInterval time.Duration
	Limiter             *rate.Limiter
}

// NewEVMClient creates a new EVM client for the given network definition.
// The primary RPC URL is tried first, then each fallback in order.
func NewEVMClient(netDef entity.NetworkDescriptor, opts EVMClientOptions) (*EVMClient, error) {
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}
	if opts.RPCCallTimeout <= 0 {
		opts.RPCCallTimeout = 15 * time.Second
	}
	if opts.ReceiptPollInterval <= 0 {
		opts.ReceiptPollInterval = defaultReceiptPollInterval
	}

	rpcURLs := append([]string{netDef.RPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{
				ethClient:           client,
				netDef:              netDef,
				rpcCallTimeout:      opts.RPCCallTimeout,
				receiptPollInterval: opts.ReceiptPollInterval,
				limiter:             opts.Limiter,
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if lastErr == nil {
		lastErr = errors.New("no RPC URL configured")
	}

	return nil, entity.NewServiceError(entity.KindNetworkUnreachable, "dial "+netDef.ID,
		fmt.Errorf("all RPC connection attempts failed: %w", lastErr))
}

// callContext waits for the rate limiter and bounds one RPC round trip.
func (c *EVMClient) callContext(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, entity.NewServiceError(entity.KindNetworkUnreachable, op, err)
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	return callCtx, cancel, nil
}

// ReadContract implements port.ContractClient.
func (c *EVMClient) ReadContract(ctx context.Context, call entity.ContractCall) ([]interface{}, error) {
	op := "read " + call.Method
	if call.ABI == nil {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "contract ABI is not set")
	}
	data, err := call.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, entity.NewServiceError(entity.KindInvalidInput, op, fmt.Errorf("pack arguments: %w", err))
	}

	callCtx, cancel, err := c.callContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	to := call.Address
	out, err := c.ethClient.CallContract(callCtx, ethereum.CallMsg{From: call.From, To: &to, Data: data}, nil)
	if err != nil {
		return nil, classifyRPCError(op, err)
	}
	if len(out) == 0 {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "empty response from %s on %s, contract not deployed?", to.Hex(), c.netDef.Name)
	}

	values, err := call.ABI.Unpack(call.Method, out)
	if err != nil {
		return nil, entity.NewServiceError(entity.KindUnknown, op, fmt.Errorf("unpack result: %w", err))
	}
	return values, nil
}

// SimulateContract implements port.ContractClient.
func (c *EVMClient) SimulateContract(ctx context.Context, call entity.ContractCall) (*entity.PreparedCall, error) {
	op := "simulate " + call.Method
	if call.ABI == nil {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "contract ABI is not set")
	}
	data, err := call.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, entity.NewServiceError(entity.KindInvalidInput, op, fmt.Errorf("pack arguments: %w", err))
	}

	to := call.Address
	msg := ethereum.CallMsg{From: call.From, To: &to, Data: data, Value: call.Value}

	callCtx, cancel, err := c.callContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if _, err := c.ethClient.CallContract(callCtx, msg, nil); err != nil {
		return nil, classifyRPCError(op, err)
	}
	gas, err := c.ethClient.EstimateGas(callCtx, msg)
	if err != nil {
		return nil, classifyRPCError(op, fmt.Errorf("estimate gas: %w", err))
	}

	return &entity.PreparedCall{ContractCall: call, Data: data, Gas: gas}, nil
}

// WriteContract implements port.ContractClient.
func (c *EVMClient) WriteContract(ctx context.Context, prepared *entity.PreparedCall, signer port.TransactionSigner) (string, error) {
	if prepared == nil {
		return "", entity.Errorf(entity.KindInvalidInput, "write contract", "call was not simulated")
	}
	op := "write " + prepared.Method
	if signer == nil {
		return "", entity.Errorf(entity.KindUnauthorized, op, "no signer")
	}
	if signer.Address() != prepared.From {
		return "", entity.Errorf(entity.KindUnauthorized, op, "signer %s does not match sender %s", signer.Address().Hex(), prepared.From.Hex())
	}

	callCtx, cancel, err := c.callContext(ctx, op)
	if err != nil {
		return "", err
	}
	defer cancel()

	nonce, err := c.ethClient.PendingNonceAt(callCtx, prepared.From)
	if err != nil {
		return "", classifyRPCError(op, fmt.Errorf("pending nonce: %w", err))
	}
	gasPrice, err := c.ethClient.SuggestGasPrice(callCtx)
	if err != nil {
		return "", classifyRPCError(op, fmt.Errorf("suggest gas price: %w", err))
	}

	value := prepared.Value
	if value == nil {
		value = big.NewInt(0)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &prepared.Address,
		Value:    value,
		Gas:      prepared.Gas,
		GasPrice: gasPrice,
		Data:     prepared.Data,
	})

	signedTx, err := signer.SignTx(tx, new(big.Int).SetUint64(c.netDef.ChainID))
	if err != nil {
		return "", entity.NewServiceError(entity.KindUnauthorized, op, fmt.Errorf("sign transaction: %w", err))
	}
	if err := c.ethClient.SendTransaction(callCtx, signedTx); err != nil {
		return "", classifyRPCError(op, fmt.Errorf("send transaction: %w", err))
	}
	return signedTx.Hash().Hex(), nil
}

// WaitForTransactionReceipt implements port.ContractClient by polling until the receipt exists.
func (c *EVMClient) WaitForTransactionReceipt(ctx context.Context, txHash string) (*entity.TransactionReceipt, error) {
	const op = "wait for receipt"
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(c.receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.fetchReceipt(ctx, hash)
		if err == nil {
			return &entity.TransactionReceipt{
				TxHash:      receipt.TxHash.Hex(),
				Status:      receipt.Status,
				BlockNumber: receiptBlock(receipt),
				GasUsed:     receipt.GasUsed,
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyRPCError(op, err)
		}

		select {
		case <-ctx.Done():
			return nil, entity.NewServiceError(entity.KindNetworkUnreachable, op,
				fmt.Errorf("transaction %s not mined: %w", txHash, ctx.Err()))
		case <-ticker.C:
		}
	}
}

func (c *EVMClient) fetchReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	callCtx, cancel, err := c.callContext(ctx, "wait for receipt")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.ethClient.TransactionReceipt(callCtx, hash)
}

func receiptBlock(r *types.Receipt) uint64 {
	if r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.Uint64()
}

// PendingNonce implements port.ContractClient.
func (c *EVMClient) PendingNonce(ctx context.Context, address string) (uint64, error) {
	const op = "pending nonce"
	if !common.IsHexAddress(address) {
		return 0, entity.Errorf(entity.KindInvalidInput, op, "invalid address %q", address)
	}
	callCtx, cancel, err := c.callContext(ctx, op)
	if err != nil {
		return 0, err
	}
	defer cancel()

	nonce, err := c.ethClient.PendingNonceAt(callCtx, common.HexToAddress(address))
	if err != nil {
		return 0, classifyRPCError(op, err)
	}
	return nonce, nil
}

// ChainID implements port.ContractClient.
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	const op = "chain id"
	callCtx, cancel, err := c.callContext(ctx, op)
	if err != nil {
		return 0, err
	}
	defer cancel()

	id, err := c.ethClient.ChainID(callCtx)
	if err != nil {
		return 0, classifyRPCError(op, err)
	}
	return id.Uint64(), nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDescriptor {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
