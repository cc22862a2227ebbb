package restapi

import (
	"net/http"
	"strings"

	"time_dividends/internal/app/port"
	"time_dividends/internal/app/service"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/configloader"
	"time_dividends/internal/infrastructure/eventhub"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP API exposes.
type Deps struct {
	Config       *configloader.Config
	Networks     port.NetworkDefinitionProvider
	Wallet       port.WalletAdapter
	Indexer      port.IndexingClient
	Selector     *service.NetworkSelector
	Coordinator  *service.FetchCoordinator
	Transactions *service.TransactionOrchestrator
	Balances     port.BalanceService
	Dividends    port.DividendService
	Estimator    *service.EarningsEstimator
	Reports      *service.ReportService
	Hub          *eventhub.Hub
	Logger       port.Logger
}

// APIResponse is the envelope of every successful response.
type APIResponse struct {
	Data          any    `json:"data"`
	StatusMessage string `json:"status_message,omitempty"`
}

// APIError is the body of every failed response.
type APIError struct {
	Error string           `json:"error"`
	Kind  entity.ErrorKind `json:"kind"`
}

// Handler обрабатывает HTTP запросы сервиса дивидендов.
type Handler struct {
	deps   Deps
	logger port.Logger
}

// NewHandler creates a new Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, logger: deps.Logger.With("component", "restapi")}
}

type connectRequest struct {
	Address string `json:"address"`
	ChainID uint64 `json:"chainId"`
}

type selectNetworkRequest struct {
	Network string `json:"network" binding:"required"`
}

type sessionResponse struct {
	Session    entity.WalletSession     `json:"session"`
	Resolution entity.NetworkResolution `json:"resolution"`
}

type networkSwitchResponse struct {
	Resolution entity.NetworkResolution `json:"resolution"`
	State      *entity.ViewState        `json:"state,omitempty"`
}

type balanceResponse struct {
	Balance *entity.TokenBalanceSnapshot `json:"balance"`
	Display entity.BalanceDisplay        `json:"display"`
}

type dividendResponse struct {
	Dividends *entity.DividendSnapshot `json:"dividends"`
	Display   entity.DividendDisplay   `json:"display"`
}

type reportResponse struct {
	Rows          []entity.DividendReportRow `json:"rows"`
	Errors        []entity.ReportError       `json:"errors,omitempty"`
	FailedWallets []string                   `json:"failedWallets,omitempty"`
}

type clientConfigResponse struct {
	WalletConnectProjectID string `json:"walletConnectProjectId"`
	DefaultNetwork         string `json:"defaultNetwork"`
	IndexerAvailable       bool   `json:"indexerAvailable"`
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch entity.KindOf(err) {
	case entity.KindInvalidInput:
		return http.StatusBadRequest
	case entity.KindUnauthorized:
		return http.StatusForbidden
	case entity.KindRateLimited:
		return http.StatusTooManyRequests
	case entity.KindNetworkUnreachable:
		return http.StatusBadGateway
	case entity.KindTransactionReverted:
		return http.StatusUnprocessableEntity
	case entity.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Debug("Request rejected", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, APIError{Error: entity.UserMessage(err, fallback), Kind: entity.KindOf(err)})
}

func (h *Handler) session(c *gin.Context) (entity.WalletSession, bool) {
	session, ok := h.deps.Wallet.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, APIError{Error: "Session not found", Kind: entity.KindInvalidInput})
		return entity.WalletSession{}, false
	}
	return session, true
}

func (h *Handler) networkParam(c *gin.Context) (entity.NetworkDescriptor, bool) {
	id := c.Query("network")
	if id == "" {
		return h.deps.Networks.DefaultNetwork(), true
	}
	network, ok := h.deps.Networks.GetNetworkDefinitionByName(id)
	if !ok {
		c.JSON(http.StatusBadRequest, APIError{Error: "Unknown network: " + id, Kind: entity.KindInvalidInput})
		return entity.NetworkDescriptor{}, false
	}
	return network, true
}

// GetConfigHandler returns the settings a browser client needs to connect a wallet.
func (h *Handler) GetConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: clientConfigResponse{
		WalletConnectProjectID: h.deps.Wallet.ProjectID(),
		DefaultNetwork:         h.deps.Networks.DefaultNetwork().ID,
		IndexerAvailable:       h.deps.Indexer != nil && h.deps.Indexer.IsInitialized(),
	}})
}

// ListNetworksHandler returns the supported networks in display order.
func (h *Handler) ListNetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.deps.Networks.GetAllNetworkDefinitions()})
}

// ConnectHandler opens a wallet session.
func (h *Handler) ConnectHandler(c *gin.Context) {
	var req connectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, entity.NewServiceError(entity.KindInvalidInput, "connect", err), "Invalid request body")
			return
		}
	}
	session, err := h.deps.Wallet.Connect(c.Request.Context(), req.Address, req.ChainID)
	if err != nil {
		h.fail(c, err, "Failed to connect wallet")
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Data: sessionResponse{
		Session:    session,
		Resolution: h.deps.Selector.ResolveSession(session),
	}})
}

// GetSessionHandler returns a session and its resolved network.
func (h *Handler) GetSessionHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: sessionResponse{
		Session:    session,
		Resolution: h.deps.Selector.ResolveSession(session),
	}})
}

// DisconnectHandler drops a session and everything held for it.
func (h *Handler) DisconnectHandler(c *gin.Context) {
	id := c.Param("id")
	if !h.deps.Wallet.Disconnect(id) {
		c.JSON(http.StatusNotFound, APIError{Error: "Session not found", Kind: entity.KindInvalidInput})
		return
	}
	h.deps.Coordinator.Forget(id)
	h.deps.Hub.CloseSession(id)
	c.Status(http.StatusNoContent)
}

// SelectNetworkHandler switches the session to another network and refreshes its state.
func (h *Handler) SelectNetworkHandler(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	var req selectNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, entity.NewServiceError(entity.KindInvalidInput, "select network", err), "Invalid request body")
		return
	}

	resolution, err := h.deps.Selector.SelectNetwork(c.Request.Context(), c.Param("id"), req.Network)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{
			"error":      entity.UserMessage(err, "Failed to switch network"),
			"kind":       entity.KindOf(err),
			"resolution": resolution,
		})
		return
	}

	resp := networkSwitchResponse{Resolution: resolution}
	state, err := h.deps.Coordinator.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("Refresh after network switch failed", "session", c.Param("id"), "error", err)
	} else {
		resp.State = &state
	}
	c.JSON(http.StatusOK, APIResponse{Data: resp})
}

// RefreshHandler fetches balance and dividends for the session.
func (h *Handler) RefreshHandler(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	state, err := h.deps.Coordinator.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to refresh")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: state})
}

// GetStateHandler returns the last applied state of the session.
func (h *Handler) GetStateHandler(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	state, ok := h.deps.Coordinator.State(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, APIError{Error: "No state yet, refresh the session first", Kind: entity.KindInvalidInput})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: state})
}

// ClaimHandler claims the session wallet's dividends.
func (h *Handler) ClaimHandler(c *gin.Context) {
	h.transaction(c, entity.ActionClaim)
}

// SweepHandler sweeps the session wallet's dividends.
func (h *Handler) SweepHandler(c *gin.Context) {
	h.transaction(c, entity.ActionSweep)
}

func (h *Handler) transaction(c *gin.Context, action entity.TransactionAction) {
	run := h.deps.Transactions.Claim
	if action == entity.ActionSweep {
		run = h.deps.Transactions.Sweep
	}
	outcome, err := run(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), APIResponse{Data: outcome, StatusMessage: outcome.Error})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: outcome, StatusMessage: "Transaction confirmed"})
}

// GetBalanceHandler returns the TIME balance of an address on ?network=.
func (h *Handler) GetBalanceHandler(c *gin.Context) {
	network, ok := h.networkParam(c)
	if !ok {
		return
	}
	balance, err := h.deps.Balances.FetchTokenBalance(c.Request.Context(), c.Param("address"), network)
	if err != nil {
		h.fail(c, err, entity.MsgBalanceFallback)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: balanceResponse{Balance: balance, Display: service.BalanceDisplayFor(balance)}})
}

// GetDividendsHandler returns the dividend position of an address on ?network=.
func (h *Handler) GetDividendsHandler(c *gin.Context) {
	network, ok := h.networkParam(c)
	if !ok {
		return
	}
	snapshot, err := h.deps.Dividends.FetchDividendData(c.Request.Context(), c.Param("address"), network)
	if err != nil {
		h.fail(c, err, "Failed to fetch dividend data. Please try again.")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: dividendResponse{Dividends: snapshot, Display: service.DividendDisplayFor(snapshot)}})
}

// EstimateHandler projects dividend earnings.
func (h *Handler) EstimateHandler(c *gin.Context) {
	var req entity.EstimateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, entity.NewServiceError(entity.KindInvalidInput, "estimate", err), "Invalid query")
		return
	}
	estimate, err := h.deps.Estimator.Estimate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to estimate earnings")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: estimate})
}

// ReportHandler returns the dividend report of the watchlist.
func (h *Handler) ReportHandler(c *gin.Context) {
	var networks []string
	for _, raw := range c.QueryArray("network") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				networks = append(networks, id)
			}
		}
	}
	rows, reportErrors := h.deps.Reports.GenerateReport(c.Request.Context(), networks)

	resp := APIResponse{Data: reportResponse{Rows: rows, Errors: reportErrors, FailedWallets: service.FailedWallets(reportErrors)}}
	switch {
	case len(reportErrors) > 0 && len(rows) == 0:
		resp.StatusMessage = "Failed to read any wallet."
	case len(reportErrors) > 0:
		resp.StatusMessage = "Report generated. Some wallets could not be read."
	case len(rows) == 0:
		resp.StatusMessage = "No report data. Check the wallet list and network configuration."
	default:
		resp.StatusMessage = "Report generated successfully."
	}
	c.JSON(http.StatusOK, resp)
}
