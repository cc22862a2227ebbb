package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"time_dividends/internal/domain/entity"

	"github.com/ethereum/go-ethereum/rpc"
)

// executionRevertedCode is the JSON-RPC error code geth-compatible nodes use for reverts.
const executionRevertedCode = 3

// classifyRPCError maps a go-ethereum RPC error onto the closed error kinds.
func classifyRPCError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *entity.ServiceError
	if errors.As(err, &se) {
		return err
	}

	var (
		httpErr rpc.HTTPError
		rpcErr  rpc.Error
		netErr  net.Error
	)
	kind := entity.KindUnknown
	switch {
	case errors.As(err, &httpErr):
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			kind = entity.KindRateLimited
		case httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden:
			kind = entity.KindUnauthorized
		case httpErr.StatusCode >= http.StatusInternalServerError:
			kind = entity.KindNetworkUnreachable
		}
	case errors.As(err, &rpcErr):
		switch {
		case rpcErr.ErrorCode() == executionRevertedCode || isRevertMessage(rpcErr.Error()):
			kind = entity.KindTransactionReverted
		case isRateLimitMessage(rpcErr.Error()):
			kind = entity.KindRateLimited
		case rpcErr.ErrorCode() == -32602:
			kind = entity.KindInvalidInput
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.As(err, &netErr):
		kind = entity.KindNetworkUnreachable
	case isRevertMessage(err.Error()):
		kind = entity.KindTransactionReverted
	}
	return entity.NewServiceError(kind, op, err)
}

func isRevertMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "execution reverted")
}

func isRateLimitMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests")
}
