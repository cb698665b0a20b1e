package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is matched by every connectivity failure.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is matched by 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConnectionErrorMessage is shown for any ErrUnavailable failure.
const ConnectionErrorMessage = "Connection error. Please check your internet connection."

// Op names an API operation; it selects the fallback error message.
type Op string

const (
	OpLogin      Op = "login"
	OpRegister   Op = "register"
	OpLogout     Op = "logout"
	OpRefresh    Op = "refresh"
	OpProfile    Op = "profile"
	OpDelete     Op = "delete"
	OpScan       Op = "scan"
	OpScanDetail Op = "scan detail"
	OpChat       Op = "chat"
	OpThreats    Op = "threats"
	OpAnalytics  Op = "analytics"
	OpHealth     Op = "health"
)

var fallbackMessages = map[Op]string{
	OpLogin:      "Login failed",
	OpRegister:   "Registration failed. Please try again.",
	OpLogout:     "Logout failed",
	OpRefresh:    "Token refresh failed",
	OpProfile:    "Failed to change password",
	OpDelete:     "Failed to delete account",
	OpScan:       "Scan failed. Please try again",
	OpScanDetail: "Scan not found",
	OpChat:       "Sorry, I encountered an error. Please try again.",
	OpThreats:    "Failed to load threats",
	OpAnalytics:  "Failed to load analytics",
	OpHealth:     "Service unhealthy",
}

// FallbackMessage is the text used when the server sends no error field.
func FallbackMessage(op Op) string {
	if m, ok := fallbackMessages[op]; ok {
		return m
	}
	return "Request failed"
}

// APIError is a non-2xx response. Message is the server's error text or
// the operation's fallback.
type APIError struct {
	Op         Op
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// TransportError means the server could not be reached or its success
// body could not be read.
type TransportError struct {
	Op  Op
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }
