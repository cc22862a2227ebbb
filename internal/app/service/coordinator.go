package service

import (
	"context"
	"sync"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/pkg/metrics"
)

// FetchCoordinator refreshes the balance and dividend view of each session.
//
// Every refresh takes the next generation number of its session. Results are
// applied only while their generation is still the latest one, so a slow
// response can never overwrite the state of a newer refresh.
type FetchCoordinator struct {
	selector  *NetworkSelector
	balances  port.BalanceService
	dividends port.DividendService
	publisher port.StatePublisher
	logger    port.Logger
	metrics   metrics.Recorder

	mu          sync.Mutex
	generations map[string]uint64
	states      map[string]entity.ViewState
}

// NewFetchCoordinator creates a FetchCoordinator. publisher and recorder may be nil.
func NewFetchCoordinator(
	selector *NetworkSelector,
	balances port.BalanceService,
	dividends port.DividendService,
	publisher port.StatePublisher,
	logger port.Logger,
	recorder metrics.Recorder,
) *FetchCoordinator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &FetchCoordinator{
		selector:    selector,
		balances:    balances,
		dividends:   dividends,
		publisher:   publisher,
		logger:      logger.With("component", "fetch_coordinator"),
		metrics:     recorder,
		generations: make(map[string]uint64),
		states:      make(map[string]entity.ViewState),
	}
}

// Refresh fetches balance and dividends for the session and applies them if still current.
// When the result is superseded, the latest applied state is returned instead.
func (c *FetchCoordinator) Refresh(ctx context.Context, sessionID string) (entity.ViewState, error) {
	session, resolution, err := c.selector.Resolve(sessionID)
	if err != nil {
		return entity.ViewState{}, err
	}

	gen := c.nextGeneration(sessionID)
	state := emptyState(sessionID, gen, resolution)

	if !session.Connected || session.Address == "" {
		c.logger.Debug("Session has no wallet, resetting state", "session", sessionID)
		applied, _ := c.apply(state)
		return applied, nil
	}
	state.Address = session.Address

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		balance, err := c.balances.FetchTokenBalance(ctx, session.Address, resolution.Network)
		if err != nil {
			state.BalanceError = entity.UserMessage(err, entity.MsgBalanceFallback)
			state.BalanceUnavailable = entity.IsKind(err, entity.KindUnavailable)
			return
		}
		state.Balance = balance
		state.BalanceDisplay = BalanceDisplayFor(balance)
	}()
	go func() {
		defer wg.Done()
		snapshot, err := c.dividends.FetchDividendData(ctx, session.Address, resolution.Network)
		if err != nil {
			state.DividendError = entity.UserMessage(err, "Failed to fetch dividend data. Please try again.")
			return
		}
		state.Dividends = snapshot
		state.DividendDisplay = DividendDisplayFor(snapshot)
	}()
	wg.Wait()

	state.UpdatedAt = time.Now().UTC()
	applied, ok := c.apply(state)
	if !ok {
		c.metrics.IncCounter(metrics.StaleResultsTotal, map[string]string{"network": resolution.Network.ID})
		c.logger.Debug("Discarded stale refresh", "session", sessionID, "generation", gen, "current", applied.Generation)
	}
	return applied, nil
}

// State returns the last applied state of a session.
func (c *FetchCoordinator) State(sessionID string) (entity.ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[sessionID]
	return state, ok
}

// Forget drops everything held for a session.
func (c *FetchCoordinator) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.generations, sessionID)
	delete(c.states, sessionID)
}

func (c *FetchCoordinator) nextGeneration(sessionID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[sessionID]++
	return c.generations[sessionID]
}

// apply stores state if its generation is current and publishes it.
// It returns the state held afterwards and whether state was applied.
func (c *FetchCoordinator) apply(state entity.ViewState) (entity.ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[state.SessionID] != state.Generation {
		return c.states[state.SessionID], false
	}
	c.states[state.SessionID] = state
	if c.publisher != nil {
		c.publisher.Publish(state.SessionID, state)
	}
	return state, true
}

func emptyState(sessionID string, gen uint64, resolution entity.NetworkResolution) entity.ViewState {
	return entity.ViewState{
		SessionID:       sessionID,
		NetworkID:       resolution.Network.ID,
		Generation:      gen,
		View:            resolution.View,
		Prompt:          resolution.Prompt,
		BalanceDisplay:  BalanceDisplayFor(nil),
		DividendDisplay: DividendDisplayFor(nil),
		UpdatedAt:       time.Now().UTC(),
	}
}
