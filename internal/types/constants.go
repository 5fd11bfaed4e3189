package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default finance API base URL
	DefaultBaseURL = "http://localhost:3333/api"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "financas-go/1.0.0"
)

// Persisted storage keys shared by the session and preference stores.
const (
	KeyToken           = "token"
	KeyUser            = "user"
	KeyTheme           = "theme"
	KeyDashboardPeriod = "dashboard-period-type"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when authentication is required
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrLoginFailed is returned when login or registration fails
	ErrLoginFailed = errors.New("login failed")

	// ErrSessionExpired is returned when the server rejects the stored token
	ErrSessionExpired = errors.New("session expired")

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout is returned on timeout
	ErrTimeout = errors.New("request timeout")

	// ErrNotFound is returned when resource not found
	ErrNotFound = errors.New("resource not found")

	// ErrServerError is returned for server errors
	ErrServerError = errors.New("server error")
)
