package financas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minhasfinancas/financas-go/internal/types"
)

var (
	// ErrNotAuthenticated is returned when a call needs a session and there is none
	ErrNotAuthenticated = types.ErrNotAuthenticated

	// ErrLoginFailed is returned when login or registration is rejected
	ErrLoginFailed = types.ErrLoginFailed

	// ErrSessionExpired is returned when the server answers 401 to a
	// non-auth request; the session has already been cleared when you see it
	ErrSessionExpired = types.ErrSessionExpired

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = types.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = types.ErrTimeout

	// ErrNotFound is returned when resource not found
	ErrNotFound = types.ErrNotFound

	// ErrServerError is returned for server errors
	ErrServerError = types.ErrServerError

	// ErrLoginInProgress is returned when a login or register call is already in flight
	ErrLoginInProgress = errors.New("login already in progress")

	// ErrWalletNotEmpty is returned when deleting a wallet whose balance is not zero
	ErrWalletNotEmpty = errors.New("wallet balance must be zero to delete")

	// ErrScopeRequired is returned when a grouped transaction is mutated
	// without a single/all scope
	ErrScopeRequired = errors.New("group scope required")

	// ErrSameWallet is returned when a transfer's source and destination match
	ErrSameWallet = errors.New("source and destination wallets must differ")
)

// Error represents an API error. Message holds the server's "error" text
// verbatim when the server sent one.
type Error = types.Error

// ValidationError represents a local validation failure on one field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("%d validation errors occurred: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *ValidationErrors) add(field, message string, value interface{}) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message, Value: value})
}

func (e *ValidationErrors) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewError creates a new API error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrLoginFailed) ||
		errors.Is(err, ErrSessionExpired)
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}

// UserMessage returns the text to show a person for err: the server's
// message when there is one, the validation message for local checks, and
// fallback otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return vErrs.Error()
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	for _, local := range []error{ErrWalletNotEmpty, ErrSameWallet, ErrScopeRequired} {
		if errors.Is(err, local) {
			return local.Error()
		}
	}

	return fallback
}
