package service

import (
	"context"
	"fmt"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
)

// UnsupportedNetworkPrompt is shown when a wallet is connected to a chain with no descriptor.
const UnsupportedNetworkPrompt = "You've switched to an unsupported network. Please select a supported network."

// NetworkSelector maps wallet sessions to supported networks and drives chain switches.
type NetworkSelector struct {
	networks port.NetworkDefinitionProvider
	wallet   port.WalletAdapter
	logger   port.Logger
}

// NewNetworkSelector creates a NetworkSelector.
func NewNetworkSelector(networks port.NetworkDefinitionProvider, wallet port.WalletAdapter, logger port.Logger) *NetworkSelector {
	return &NetworkSelector{
		networks: networks,
		wallet:   wallet,
		logger:   logger.With("component", "network_selector"),
	}
}

// ResolveSession picks the network for a session.
func (s *NetworkSelector) ResolveSession(session entity.WalletSession) entity.NetworkResolution {
	if session.Connected {
		if network, ok := s.networks.GetNetworkDefinitionByChainID(session.ChainID); ok {
			return entity.NetworkResolution{Network: network, Supported: true, View: entity.ViewDividends}
		}
		return entity.NetworkResolution{
			Network: s.networks.DefaultNetwork(),
			Prompt:  UnsupportedNetworkPrompt,
			View:    entity.ViewNetwork,
		}
	}
	return entity.NetworkResolution{Network: s.networks.DefaultNetwork(), View: entity.ViewNetwork}
}

// Resolve looks the session up and resolves its network.
func (s *NetworkSelector) Resolve(sessionID string) (entity.WalletSession, entity.NetworkResolution, error) {
	session, ok := s.wallet.Session(sessionID)
	if !ok {
		return entity.WalletSession{}, entity.NetworkResolution{}, entity.Errorf(entity.KindInvalidInput, "resolve network", "unknown session %q", sessionID)
	}
	return session, s.ResolveSession(session), nil
}

// SelectNetwork asks the wallet to switch to networkID. On failure the previous network stays selected.
func (s *NetworkSelector) SelectNetwork(ctx context.Context, sessionID, networkID string) (entity.NetworkResolution, error) {
	session, current, err := s.Resolve(sessionID)
	if err != nil {
		return entity.NetworkResolution{}, err
	}

	target, ok := s.networks.GetNetworkDefinitionByName(networkID)
	if !ok {
		return current, entity.Errorf(entity.KindInvalidInput, "select network", "unknown network %q", networkID)
	}

	updated, err := s.wallet.SwitchChain(ctx, session.ID, target.ChainID)
	if err != nil {
		s.logger.Warn("Network switch failed", "session", sessionID, "network", target.ID, "error", err)
		return current, &entity.ServiceError{
			Kind:    entity.KindOf(err),
			Op:      "select network",
			Message: fmt.Sprintf("Failed to switch to %s. Please try again from your wallet.", target.Name),
			Err:     err,
		}
	}

	s.logger.Info("Network switched", "session", sessionID, "network", target.ID, "chain_id", updated.ChainID)
	resolution := s.ResolveSession(updated)
	resolution.View = entity.ViewDividends
	return resolution, nil
}
