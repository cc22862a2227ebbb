package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	moralis "time_dividends/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMoralisBaseURL is the v2.2 REST root of the indexing API.
const DefaultMoralisBaseURL = "https://deep-index.moralis.io/api/v2.2"

var errNotInitialized = errors.New("indexing client is not initialized")

// moralisClientImpl is the fasthttp implementation of port.IndexingClient.
type moralisClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	limiter *rate.Limiter

	mu     sync.RWMutex
	apiKey string
}

// NewMoralisClient creates a new indexing client. limiter may be nil.
// logger is named "MoralisClient" here; callers pass it unnamed.
func NewMoralisClient(baseURL string, timeout time.Duration, logger *zap.Logger, limiter *rate.Limiter) port.IndexingClient {
	if baseURL == "" {
		baseURL = DefaultMoralisBaseURL
	}
	return &moralisClientImpl{
		client:  &fasthttp.Client{Name: "time-dividends"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("MoralisClient"),
		limiter: limiter,
	}
}

// Initialize implements port.IndexingClient.
func (c *moralisClientImpl) Initialize(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return entity.Errorf(entity.KindUnavailable, "initialize indexing client", "API key is not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.apiKey == apiKey {
		return nil
	}
	if c.apiKey != "" {
		c.logger.Info("Replacing indexing API key")
	}
	c.apiKey = apiKey
	return nil
}

func (c *moralisClientImpl) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *moralisClientImpl) Close() {
	c.mu.Lock()
	c.apiKey = ""
	c.mu.Unlock()
	c.client.CloseIdleConnections()
}

// GetWalletTokenBalances implements port.IndexingClient.
func (c *moralisClientImpl) GetWalletTokenBalances(ctx context.Context, address, chain string, tokenAddresses []string) (*moralis.WalletTokenBalances, error) {
	const op = "get wallet token balances"
	if address == "" || chain == "" {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "address and chain are required")
	}
	if !IsValidChain(chain) {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "unsupported chain %q", chain)
	}

	query := url.Values{}
	query.Set("chain", chain)
	for i, token := range tokenAddresses {
		query.Set("token_addresses["+strconv.Itoa(i)+"]", token)
	}
	requestURL := fmt.Sprintf("%s/wallets/%s/tokens?%s", c.baseURL, url.PathEscape(address), query.Encode())

	body, err := c.get(ctx, op, requestURL)
	if err != nil {
		return nil, err
	}

	var page moralis.WalletTokensPage
	if err := json.Unmarshal(body, &page); err != nil {
		c.logger.Error("Failed to unmarshal wallet tokens response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return nil, entity.NewServiceError(entity.KindUnknown, op, fmt.Errorf("decode response: %w", err))
	}

	result := &moralis.WalletTokenBalances{
		Address:       address,
		Chain:         chain,
		TokenBalances: page.Result,
	}
	for _, tb := range page.Result {
		if tb.UsdValue != nil {
			result.TotalUSDValue += *tb.UsdValue
		}
	}

	c.logger.Debug("Fetched wallet token balances",
		zap.String("address", address),
		zap.String("chain", chain),
		zap.Int("tokenCount", len(page.Result)))
	return result, nil
}

// GetTokenPrice implements port.IndexingClient.
func (c *moralisClientImpl) GetTokenPrice(ctx context.Context, chain, tokenAddress string) (*moralis.TokenPrice, error) {
	const op = "get token price"
	if tokenAddress == "" || !IsValidChain(chain) {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "invalid chain %q or token address %q", chain, tokenAddress)
	}

	requestURL := fmt.Sprintf("%s/erc20/%s/price?chain=%s", c.baseURL, url.PathEscape(tokenAddress), url.QueryEscape(chain))
	body, err := c.get(ctx, op, requestURL)
	if err != nil {
		return nil, err
	}

	var price moralis.TokenPrice
	if err := json.Unmarshal(body, &price); err != nil {
		return nil, entity.NewServiceError(entity.KindUnknown, op, fmt.Errorf("decode response: %w", err))
	}
	return &price, nil
}

func (c *moralisClientImpl) get(ctx context.Context, op, requestURL string) ([]byte, error) {
	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()
	if apiKey == "" {
		return nil, entity.NewServiceError(entity.KindUnavailable, op, errNotInitialized)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, entity.NewServiceError(entity.KindNetworkUnreachable, op, err)
		}
	}

	c.logger.Debug("Requesting indexing API", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to indexing API", zap.String("url", requestURL), zap.Error(err))
			return nil, entity.NewServiceError(entity.KindNetworkUnreachable, op, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to indexing API (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, entity.NewServiceError(entity.KindNetworkUnreachable, op, err)
		}
	}

	// resp is released on return, copy the body out.
	rawBody := append([]byte(nil), resp.Body()...)

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Indexing API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, statusError(op, resp.StatusCode(), rawBody)
	}
	return rawBody, nil
}

// statusError maps a non-200 response onto the closed error kinds.
func statusError(op string, status int, body []byte) error {
	var apiErr moralis.APIError
	_ = json.Unmarshal(body, &apiErr)
	detail := apiErr.Message
	if detail == "" {
		detail = fasthttp.StatusMessage(status)
	}
	err := fmt.Errorf("status %d: %s", status, detail)

	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return entity.NewServiceError(entity.KindUnauthorized, op, err)
	case status == fasthttp.StatusTooManyRequests:
		return entity.NewServiceError(entity.KindRateLimited, op, err)
	case status == fasthttp.StatusBadRequest || status == fasthttp.StatusNotFound || status == fasthttp.StatusUnprocessableEntity:
		return entity.NewServiceError(entity.KindInvalidInput, op, err)
	case status >= fasthttp.StatusInternalServerError:
		return entity.NewServiceError(entity.KindNetworkUnreachable, op, err)
	default:
		return entity.NewServiceError(entity.KindUnknown, op, err)
	}
}
