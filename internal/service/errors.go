package service

import (
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidShowdown = "INVALID_SHOWDOWN"
	CodeInvalidUser     = "INVALID_USER"
	CodeVotingClosed    = "VOTING_CLOSED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRelayKeyNotSet  = "RELAY_KEY_NOT_SET"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// DomainError is a caller-visible rejection. Details, when set, is merged
// into the error response body.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details map[string]any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func InvalidInput(message string) *DomainError {
	return domainError(http.StatusBadRequest, CodeInvalidInput, message, nil)
}

func Unauthorized() *DomainError {
	return domainError(http.StatusUnauthorized, CodeUnauthorized, "invalid relay key", nil)
}

func RelayKeyNotSet() *DomainError {
	return domainError(http.StatusInternalServerError, CodeRelayKeyNotSet, "relay key is not configured", nil)
}

func RateLimited() *DomainError {
	return domainError(http.StatusTooManyRequests, CodeRateLimited, "too many requests", nil)
}

func Internal() *DomainError {
	return domainError(http.StatusInternalServerError, CodeInternal, "internal server error", nil)
}

func invalidShowdown() *DomainError {
	return domainError(http.StatusBadRequest, CodeInvalidShowdown, "unknown or malformed showdown id", nil)
}

func invalidUser() *DomainError {
	return domainError(http.StatusBadRequest, CodeInvalidUser, "unknown or malformed user id", nil)
}

func votingClosed(reason string) *DomainError {
	return domainError(http.StatusBadRequest, CodeVotingClosed, "voting is not open for this showdown",
		map[string]any{"reason": reason})
}
