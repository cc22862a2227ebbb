package service

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"
	"time"

	"time_dividends/internal/app/port/porttest"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/abiloader"
	networkdefinition "time_dividends/internal/infrastructure/network/definition"
	"time_dividends/internal/infrastructure/wallet"
	"time_dividends/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	networks *networkdefinition.NetworkDefinitionProvider
	wallet   *wallet.Adapter
	signer   *wallet.KeySigner
	clients  *porttest.ClientProvider
	pulse    *porttest.ContractClient
	eth      *porttest.ContractClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	networks, err := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop(), nil, "ethereum")
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := wallet.NewKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)

	pulse := porttest.NewContractClient(networkdefinition.PulseChain)
	pulse.Reads[abiloader.MethodDecimals] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{uint8(18)}, nil
	}
	eth := porttest.NewContractClient(networkdefinition.Ethereum)
	clients := porttest.NewClientProvider(pulse, eth)

	return &fixture{
		networks: networks,
		wallet:   wallet.NewAdapter(time.Hour, "project", signer, networks, clients, logger.NewNop()),
		signer:   signer,
		clients:  clients,
		pulse:    pulse,
		eth:      eth,
	}
}

// connect opens a session for the signer's account on chainID.
func (f *fixture) connect(t *testing.T, chainID uint64) entity.WalletSession {
	t.Helper()
	session, err := f.wallet.Connect(context.Background(), "", chainID)
	require.NoError(t, err)
	return session
}

// tokens returns n whole TIME in wei.
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func uintRead(v *big.Int) porttest.ReadFunc {
	return func([]interface{}) ([]interface{}, error) { return []interface{}{v}, nil }
}

type recordingPublisher struct {
	mu     sync.Mutex
	states []entity.ViewState
}

func (p *recordingPublisher) Publish(_ string, state entity.ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *recordingPublisher) published() []entity.ViewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.ViewState(nil), p.states...)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: map[string]int{}}
}

func (r *countingRecorder) IncCounter(name string, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
	if res, ok := labels["result"]; ok {
		r.counts[name+":"+res]++
	}
}

func (r *countingRecorder) ObserveDuration(string, time.Duration, map[string]string) {}

func (r *countingRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}
