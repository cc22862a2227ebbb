package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/abiloader"
	"time_dividends/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Transaction guard messages.
const (
	MsgWalletNotConnected   = "Wallet not connected"
	MsgUnsupportedNetwork   = "Please switch to a supported network"
	MsgNoDividends          = "No dividends available to claim"
	MsgNoTokens             = "No TIME tokens found. You need TIME tokens to sweep dividends."
	MsgTransactionFailed    = "Transaction failed"
	msgTransactionFallback  = "Transaction could not be completed. Please try again."
	defaultConfirmTimeout   = 3 * time.Minute
	defaultTransactionLabel = "unknown"
)

// refresher is the part of FetchCoordinator the orchestrator needs after a mined transaction.
type refresher interface {
	Refresh(ctx context.Context, sessionID string) (entity.ViewState, error)
}

// TransactionOrchestrator runs claim and sweep as guard, simulate, send and confirm.
type TransactionOrchestrator struct {
	wallet         port.WalletAdapter
	networks       port.NetworkDefinitionProvider
	clients        port.ContractClientProvider
	contractABI    *abi.ABI
	refresher      refresher
	logger         port.Logger
	metrics        metrics.Recorder
	confirmTimeout time.Duration

	mu sync.Mutex
	// inFlight maps address:action to the pending nonce the write was built on.
	inFlight map[string]uint64
}

// NewTransactionOrchestrator creates a TransactionOrchestrator. refresher and recorder may be nil.
func NewTransactionOrchestrator(
	wallet port.WalletAdapter,
	networks port.NetworkDefinitionProvider,
	clients port.ContractClientProvider,
	contractABI *abi.ABI,
	refresher refresher,
	logger port.Logger,
	recorder metrics.Recorder,
	confirmTimeout time.Duration,
) *TransactionOrchestrator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &TransactionOrchestrator{
		wallet:         wallet,
		networks:       networks,
		clients:        clients,
		contractABI:    contractABI,
		refresher:      refresher,
		logger:         logger.With("component", "transaction_orchestrator"),
		metrics:        recorder,
		confirmTimeout: confirmTimeout,
		inFlight:       make(map[string]uint64),
	}
}

// Claim pays the claimable dividend of the session wallet to itself.
func (o *TransactionOrchestrator) Claim(ctx context.Context, sessionID string) (entity.TransactionOutcome, error) {
	return o.run(ctx, sessionID, entity.ActionClaim)
}

// Sweep transfers zero TIME to the contract, which settles the pending dividend.
func (o *TransactionOrchestrator) Sweep(ctx context.Context, sessionID string) (entity.TransactionOutcome, error) {
	return o.run(ctx, sessionID, entity.ActionSweep)
}

func guardError(op, msg string) error {
	return &entity.ServiceError{Kind: entity.KindInvalidInput, Op: op, Message: msg}
}

func (o *TransactionOrchestrator) run(ctx context.Context, sessionID string, action entity.TransactionAction) (entity.TransactionOutcome, error) {
	start := time.Now()
	outcome := entity.TransactionOutcome{Action: action}
	networkLabel := defaultTransactionLabel

	err := func() error {
		op := string(action)

		session, ok := o.wallet.Session(sessionID)
		if !ok || !session.Connected || session.Address == "" {
			return guardError(op, MsgWalletNotConnected)
		}
		network, ok := o.networks.GetNetworkDefinitionByChainID(session.ChainID)
		if !ok {
			return guardError(op, MsgUnsupportedNetwork)
		}
		networkLabel = network.ID
		outcome.NetworkID = network.ID
		if !network.HasToken() {
			return errContractNotDeployed(network.ID)
		}
		client, err := o.clients.GetClient(network)
		if err != nil {
			return err
		}

		release, err := o.reserve(ctx, client, session.Address, action)
		if err != nil {
			return err
		}
		defer release()

		call, err := o.buildCall(ctx, client, network, common.HexToAddress(session.Address), action)
		if err != nil {
			return err
		}
		signer, err := o.wallet.SignerFor(session)
		if err != nil {
			return err
		}

		prepared, err := client.SimulateContract(ctx, call)
		if err != nil {
			o.logger.Warn("Simulation failed", "action", action, "network", network.ID, "error", err)
			return err
		}

		txHash, err := client.WriteContract(ctx, prepared, signer)
		if err != nil {
			o.logger.Error("Broadcast failed", "action", action, "network", network.ID, "error", err)
			return err
		}
		outcome.TxHash = txHash
		outcome.TxURL = network.TxURL(txHash)
		o.logger.Info("Transaction sent", "action", action, "network", network.ID, "tx", txHash)

		waitCtx, cancel := context.WithTimeout(ctx, o.confirmTimeout)
		defer cancel()
		receipt, err := client.WaitForTransactionReceipt(waitCtx, txHash)
		if err != nil {
			return err
		}
		if receipt.Status != entity.ReceiptStatusSuccessful {
			return &entity.ServiceError{Kind: entity.KindTransactionReverted, Op: op, Message: MsgTransactionFailed}
		}
		o.logger.Info("Transaction confirmed", "action", action, "network", network.ID, "tx", txHash, "block", receipt.BlockNumber)
		return nil
	}()

	result := "success"
	if err != nil {
		result = string(entity.KindOf(err))
		outcome.Error = entity.UserMessage(err, msgTransactionFallback)
	} else {
		outcome.Success = true
	}
	o.metrics.IncCounter(metrics.TransactionsTotal, map[string]string{"action": string(action), "network": networkLabel, "result": result})
	o.metrics.ObserveDuration(metrics.TransactionLatency, time.Since(start), map[string]string{"action": string(action), "network": networkLabel})

	if err != nil {
		return outcome, err
	}
	if o.refresher != nil {
		if _, rerr := o.refresher.Refresh(ctx, sessionID); rerr != nil {
			o.logger.Warn("Refresh after transaction failed", "session", sessionID, "error", rerr)
		}
	}
	return outcome, nil
}

// reserve marks address:action in flight. The pending nonce is recorded for the logs;
// it moves once the transaction is broadcast, so the key itself does not include it.
func (o *TransactionOrchestrator) reserve(ctx context.Context, client port.ContractClient, address string, action entity.TransactionAction) (func(), error) {
	key := strings.ToLower(address) + ":" + string(action)

	o.mu.Lock()
	if nonce, busy := o.inFlight[key]; busy {
		o.mu.Unlock()
		o.logger.Warn("Refused duplicate transaction", "action", action, "address", address, "nonce", nonce)
		return nil, guardError(string(action), fmt.Sprintf("A %s transaction is already in progress", action))
	}
	o.inFlight[key] = 0
	o.mu.Unlock()

	release := func() {
		o.mu.Lock()
		delete(o.inFlight, key)
		o.mu.Unlock()
	}

	nonce, err := client.PendingNonce(ctx, address)
	if err != nil {
		release()
		return nil, err
	}
	o.mu.Lock()
	o.inFlight[key] = nonce
	o.mu.Unlock()
	return release, nil
}

func (o *TransactionOrchestrator) buildCall(ctx context.Context, client port.ContractClient, network entity.NetworkDescriptor, user common.Address, action entity.TransactionAction) (entity.ContractCall, error) {
	contract := common.HexToAddress(network.TokenAddress)
	call := entity.ContractCall{Address: contract, ABI: o.contractABI, From: user}

	switch action {
	case entity.ActionClaim:
		claimable, err := readUint256(ctx, client, o.contractABI, contract, abiloader.MethodClaimableDividendOf, user)
		if err != nil {
			return call, err
		}
		if claimable.Sign() <= 0 {
			return call, guardError(string(action), MsgNoDividends)
		}
		call.Method = abiloader.MethodClaimDividend
		call.Args = []interface{}{user, claimable}
	case entity.ActionSweep:
		balance, err := readUint256(ctx, client, o.contractABI, contract, abiloader.MethodBalanceOf, user)
		if err != nil {
			return call, err
		}
		if balance.Sign() <= 0 {
			return call, guardError(string(action), MsgNoTokens)
		}
		if mdps, err := readUint256(ctx, client, o.contractABI, contract, abiloader.MethodMagnifiedDividendPerShare); err == nil {
			o.logger.Debug("Sweeping dividends", "network", network.ID, "balance", balance.String(), "magnified_per_share", mdps.String())
		} else {
			o.logger.Warn("Could not read magnifiedDividendPerShare", "network", network.ID, "error", err)
		}
		call.Method = abiloader.MethodTransfer
		call.Args = []interface{}{contract, big.NewInt(0)}
	default:
		return call, entity.Errorf(entity.KindInvalidInput, "transaction", "unknown action %q", action)
	}
	return call, nil
}
