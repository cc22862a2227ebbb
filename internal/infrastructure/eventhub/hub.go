// Package eventhub fans view states out to the websocket subscribers of a session.
package eventhub

import (
	"sync"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
)

const defaultBuffer = 8

// Hub implements port.StatePublisher. Publish never blocks: a subscriber whose
// buffer is full misses the update and catches up with the next one.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan entity.ViewState
	nextID int
	buffer int
	logger port.Logger
}

// New creates a Hub with the given per-subscriber buffer.
func New(buffer int, logger port.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[int]chan entity.ViewState),
		buffer: buffer,
		logger: logger.With("component", "eventhub"),
	}
}

// Subscribe registers a listener for sessionID. The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan entity.ViewState, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan entity.ViewState, h.buffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan entity.ViewState)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[sessionID]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(h.subs, sessionID)
				}
			}
		})
	}
}

// Publish implements port.StatePublisher.
func (h *Hub) Publish(sessionID string, state entity.ViewState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs[sessionID] {
		select {
		case ch <- state:
		default:
			h.logger.Debug("Subscriber buffer full, dropping update", "session", sessionID, "subscriber", id, "generation", state.Generation)
		}
	}
}

// CloseSession closes every subscription of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}

// Subscribers returns the number of listeners on sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
