package entity

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes surfaced by adapters.
type ErrorKind string

const (
	KindRateLimited         ErrorKind = "rate_limited"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindNetworkUnreachable  ErrorKind = "network_unreachable"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindTransactionReverted ErrorKind = "transaction_reverted"
	KindUnavailable         ErrorKind = "unavailable"
	KindUnknown             ErrorKind = "unknown"
)

// User-facing messages per kind.
const (
	MsgUnauthorized       = "Invalid API configuration. Please contact support."
	MsgRateLimited        = "Service temporarily unavailable. Please try again in a moment."
	MsgNetworkUnreachable = "Network error. Please check your connection and try again."
	MsgUnavailable        = "Service unavailable: not configured."
	MsgBalanceFallback    = "Failed to fetch token balance. Please try again."
)

// ServiceError is the error type returned across adapter boundaries.
type ServiceError struct {
	Kind ErrorKind
	Op   string
	// Message overrides the error text when set.
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op + ": " + string(e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError wraps err with a kind and the operation that failed.
func NewServiceError(kind ErrorKind, op string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a ServiceError from a format string.
func Errorf(kind ErrorKind, op string, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first ServiceError in err's chain, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage maps err to the text shown to the user.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if !errors.As(err, &se) {
		return fallback
	}
	if se.Message != "" {
		return se.Message
	}
	switch se.Kind {
	case KindUnauthorized:
		return MsgUnauthorized
	case KindRateLimited:
		return MsgRateLimited
	case KindNetworkUnreachable:
		return MsgNetworkUnreachable
	case KindUnavailable:
		return MsgUnavailable
	case KindInvalidInput, KindTransactionReverted:
		return se.Error()
	default:
		return fallback
	}
}
