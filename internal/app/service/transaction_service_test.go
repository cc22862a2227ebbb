package service

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/abiloader"
	"time_dividends/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls []string
}

func (r *countingRefresher) Refresh(_ context.Context, sessionID string) (entity.ViewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sessionID)
	return entity.ViewState{SessionID: sessionID}, nil
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newOrchestrator(f *fixture, r refresher, recorder *countingRecorder) *TransactionOrchestrator {
	return NewTransactionOrchestrator(f.wallet, f.networks, f.clients, abiloader.DefaultABI(), r, logger.NewNop(), recorder, time.Second)
}

func TestClaimSuccess(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	session := f.connect(t, 369)
	refresher := &countingRefresher{}
	recorder := newCountingRecorder()
	o := newOrchestrator(f, refresher, recorder)

	outcome, err := o.Claim(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, entity.ActionClaim, outcome.Action)
	assert.Equal(t, f.pulse.TxHash, outcome.TxHash)
	assert.Equal(t, "https://scan.pulsechain.com/tx/"+f.pulse.TxHash, outcome.TxURL)
	assert.Empty(t, outcome.Error)

	simulated := f.pulse.Simulated()
	require.Len(t, simulated, 1)
	assert.Equal(t, abiloader.MethodClaimDividend, simulated[0].Method)
	assert.Equal(t, f.signer.Address(), simulated[0].From)
	require.Len(t, simulated[0].Args, 2)
	assert.Equal(t, f.signer.Address(), simulated[0].Args[0])
	assert.Equal(t, 0, tokens(2).Cmp(simulated[0].Args[1].(*big.Int)))

	assert.Equal(t, 1, f.pulse.Calls("write"))
	assert.Equal(t, 1, f.pulse.Calls("wait"))
	assert.Equal(t, 1, refresher.count())
	assert.Equal(t, 1, recorder.count("transactions_total:success"))
}

func TestClaimWithNothingClaimable(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Reads[abiloader.MethodClaimableDividendOf] = uintRead(big.NewInt(0))
	session := f.connect(t, 369)
	refresher := &countingRefresher{}
	o := newOrchestrator(f, refresher, newCountingRecorder())

	outcome, err := o.Claim(context.Background(), session.ID)
	require.Error(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, MsgNoDividends, outcome.Error)
	assert.Equal(t, 0, f.pulse.Calls("simulate"))
	assert.Equal(t, 0, f.pulse.Calls("write"))
	assert.Equal(t, 0, refresher.count())
}

func TestReadOnlySessionWithNothingClaimable(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Reads[abiloader.MethodClaimableDividendOf] = uintRead(big.NewInt(0))
	session, err := f.wallet.Connect(context.Background(), "0x1111111111111111111111111111111111111111", 369)
	require.NoError(t, err)
	require.False(t, session.CanSign)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Claim(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, MsgNoDividends, outcome.Error)
	assert.Equal(t, 0, f.pulse.Calls("simulate"))
}

func TestReadOnlySessionWithoutTokens(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Reads[abiloader.MethodBalanceOf] = uintRead(big.NewInt(0))
	session, err := f.wallet.Connect(context.Background(), "0x1111111111111111111111111111111111111111", 369)
	require.NoError(t, err)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Sweep(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, MsgNoTokens, outcome.Error)
}

func TestSweepSuccess(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Reads[abiloader.MethodMagnifiedDividendPerShare] = uintRead(big.NewInt(12345))
	session := f.connect(t, 369)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Sweep(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	simulated := f.pulse.Simulated()
	require.Len(t, simulated, 1)
	assert.Equal(t, abiloader.MethodTransfer, simulated[0].Method)
	assert.Equal(t, common.HexToAddress(f.pulse.Network.TokenAddress), simulated[0].Args[0])
	assert.Equal(t, 0, simulated[0].Args[1].(*big.Int).Sign())
	assert.Equal(t, 1, f.pulse.Calls("read:"+abiloader.MethodMagnifiedDividendPerShare))
}

func TestSweepWithoutTokens(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Reads[abiloader.MethodBalanceOf] = uintRead(big.NewInt(0))
	session := f.connect(t, 369)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Sweep(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, MsgNoTokens, outcome.Error)
	assert.Equal(t, 0, f.pulse.Calls("simulate"))
}

func TestTransactionGuards(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Claim(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, MsgWalletNotConnected, outcome.Error)

	unsupported := f.connect(t, 250)
	outcome, err = o.Claim(context.Background(), unsupported.ID)
	require.Error(t, err)
	assert.Equal(t, MsgUnsupportedNetwork, outcome.Error)

	eth := f.connect(t, 1)
	outcome, err = o.Sweep(context.Background(), eth.ID)
	require.Error(t, err)
	assert.Equal(t, "TIME contract not deployed on ethereum", outcome.Error)

	other, err := f.wallet.Connect(context.Background(), "0x2222222222222222222222222222222222222222", 369)
	require.NoError(t, err)
	outcome, err = o.Claim(context.Background(), other.ID)
	require.Error(t, err)
	assert.Equal(t, "Wallet cannot sign for 0x2222222222222222222222222222222222222222", outcome.Error)
	assert.Equal(t, 0, f.pulse.Calls("simulate"))
}

func TestClaimRevertedSimulation(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.SimulateErr = &entity.ServiceError{Kind: entity.KindTransactionReverted, Op: "simulate", Message: "execution reverted: nothing to claim"}
	session := f.connect(t, 369)
	o := newOrchestrator(f, nil, newCountingRecorder())

	outcome, err := o.Claim(context.Background(), session.ID)
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindTransactionReverted))
	assert.Equal(t, "execution reverted: nothing to claim", outcome.Error)
	assert.Equal(t, 0, f.pulse.Calls("write"))
}

func TestClaimFailedReceipt(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	f.pulse.Receipt = &entity.TransactionReceipt{TxHash: f.pulse.TxHash, Status: 0}
	session := f.connect(t, 369)
	refresher := &countingRefresher{}
	o := newOrchestrator(f, refresher, newCountingRecorder())

	outcome, err := o.Claim(context.Background(), session.ID)
	require.Error(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, MsgTransactionFailed, outcome.Error)
	assert.Equal(t, f.pulse.TxHash, outcome.TxHash, "hash is kept so the user can inspect the revert")
	assert.Equal(t, 0, refresher.count())
}

func TestDuplicateClaimRefused(t *testing.T) {
	f := newFixture(t)
	stockPulse(f)
	session := f.connect(t, 369)
	o := newOrchestrator(f, nil, newCountingRecorder())

	var (
		second    entity.TransactionOutcome
		secondErr error
	)
	f.pulse.BeforeWrite = func() {
		second, secondErr = o.Claim(context.Background(), session.ID)
	}

	first, err := o.Claim(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, first.Success)

	require.Error(t, secondErr)
	assert.Equal(t, "A claim transaction is already in progress", second.Error)
	assert.Equal(t, 1, f.pulse.Calls("write"))
	assert.Len(t, f.pulse.Simulated(), 1)

	f.pulse.BeforeWrite = nil
	_, err = o.Claim(context.Background(), session.ID)
	require.NoError(t, err, "the key is released once the first claim finishes")
}
