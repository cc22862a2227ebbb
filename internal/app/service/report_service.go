package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
)

// ReportService builds the dividend report for every watched wallet.
type ReportService struct {
	walletProvider        port.WalletProvider
	networkProvider       port.NetworkDefinitionProvider
	dividendSvc           port.DividendService
	logger                port.Logger
	maxConcurrentRoutines int
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	wp port.WalletProvider,
	np port.NetworkDefinitionProvider,
	ds port.DividendService,
	l port.Logger,
	maxRoutines int,
) *ReportService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &ReportService{
		walletProvider:        wp,
		networkProvider:       np,
		dividendSvc:           ds,
		logger:                l.With("component", "report_service"),
		maxConcurrentRoutines: maxRoutines,
	}
}

// GenerateReport reads dividends for all wallets on the tracked networks.
// An empty trackedNetworkIDs selects every network that has a TIME contract.
func (s *ReportService) GenerateReport(ctx context.Context, trackedNetworkIDs []string) ([]entity.DividendReportRow, []entity.ReportError) {
	s.logger.Debug("Generating dividend report", "tracked_networks", trackedNetworkIDs)
	wallets, err := s.walletProvider.GetWallets()
	if err != nil {
		s.logger.Error("Failed to get wallets", "error", err)
		return nil, []entity.ReportError{{Message: fmt.Sprintf("failed to load wallets: %v", err)}}
	}

	activeNetworks := s.activeNetworks(trackedNetworkIDs)
	if len(activeNetworks) == 0 {
		s.logger.Warn("No networks with a TIME contract to report on.")
		return []entity.DividendReportRow{}, nil
	}

	type result struct {
		row entity.DividendReportRow
		err *entity.ReportError
	}
	results := make(chan result, len(wallets)*len(activeNetworks))
	semaphore := make(chan struct{}, s.maxConcurrentRoutines)
	var wg sync.WaitGroup

	for _, wallet := range wallets {
		for _, network := range activeNetworks {
			wg.Add(1)
			go func(w entity.Wallet, nd entity.NetworkDescriptor) {
				defer wg.Done()
				select {
				case semaphore <- struct{}{}:
				case <-ctx.Done():
					results <- result{err: &entity.ReportError{WalletAddress: w.Address, NetworkID: nd.ID, Message: ctx.Err().Error()}}
					return
				}
				defer func() { <-semaphore }()

				snapshot, err := s.dividendSvc.FetchDividendData(ctx, w.Address, nd)
				if err != nil {
					results <- result{err: &entity.ReportError{
						WalletAddress: w.Address,
						NetworkID:     nd.ID,
						Message:       entity.UserMessage(err, err.Error()),
					}}
					return
				}
				results <- result{row: entity.DividendReportRow{
					WalletAddress: w.Address,
					NetworkID:     nd.ID,
					Display:       DividendDisplayFor(snapshot),
				}}
			}(wallet, network)
		}
	}

	wg.Wait()
	close(results)

	rows := make([]entity.DividendReportRow, 0, len(wallets)*len(activeNetworks))
	var reportErrors []entity.ReportError
	for r := range results {
		if r.err != nil {
			reportErrors = append(reportErrors, *r.err)
			continue
		}
		rows = append(rows, r.row)
	}

	order := make(map[string]int, len(activeNetworks))
	for i, nd := range activeNetworks {
		order[nd.ID] = i
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WalletAddress != rows[j].WalletAddress {
			return rows[i].WalletAddress < rows[j].WalletAddress
		}
		return order[rows[i].NetworkID] < order[rows[j].NetworkID]
	})

	s.logger.Info("Dividend report generated", "rows", len(rows), "errors", len(reportErrors))
	return rows, reportErrors
}

// FailedWallets returns the sorted, distinct wallet addresses of reportErrors.
// Errors without an address (wallet list failures) are skipped.
func FailedWallets(reportErrors []entity.ReportError) []string {
	seen := make(map[string]bool, len(reportErrors))
	out := make([]string, 0, len(reportErrors))
	for _, e := range reportErrors {
		if e.WalletAddress == "" || seen[e.WalletAddress] {
			continue
		}
		seen[e.WalletAddress] = true
		out = append(out, e.WalletAddress)
	}
	sort.Strings(out)
	return out
}

func (s *ReportService) activeNetworks(tracked []string) []entity.NetworkDescriptor {
	all := s.networkProvider.GetAllNetworkDefinitions()
	trackedSet := make(map[string]bool, len(tracked))
	for _, id := range tracked {
		trackedSet[strings.ToLower(strings.TrimSpace(id))] = true
	}

	active := make([]entity.NetworkDescriptor, 0, len(all))
	for _, nd := range all {
		if len(trackedSet) > 0 && !trackedSet[strings.ToLower(nd.ID)] {
			continue
		}
		if !nd.HasToken() {
			if len(trackedSet) > 0 {
				s.logger.Warn("Tracked network has no TIME contract, skipping", "network", nd.ID)
			}
			continue
		}
		active = append(active, nd)
	}
	return active
}
