package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ErrUnauthorized is a policy violation: the actor may not perform the
// operation on this resource. Not retryable.
func ErrUnauthorized(action string) *AppError {
	return New("AUTH_004", fmt.Sprintf("Not authorized to %s", action), http.StatusForbidden)
}

// ---- Wallet Business Rules (WAL) ----

func ErrNotFound(entity string) *AppError {
	return New("WAL_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrWithdrawalDenied is a business-rule rejection before any transaction is
// persisted. Not retryable.
func ErrWithdrawalDenied(reason string) *AppError {
	return New("WAL_002", reason, http.StatusUnprocessableEntity)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_003", "Amount must be positive", http.StatusBadRequest)
}

// ---- Transaction Lifecycle (TXN) ----

// ErrInvalidState rejects a decision on a transaction that already left
// PENDING. Indicates a stale client view; not retryable.
func ErrInvalidState() *AppError {
	return New("TXN_001", "Only PENDING transactions can be approved or denied", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrStoreConflict signals wallet lock contention that outlived the bounded
// retry. Transient: callers may retry with backoff.
func ErrStoreConflict(err error) *AppError {
	return Wrap("SYS_002", "Wallet is busy, retry later", http.StatusServiceUnavailable, err)
}

// ErrInvalidOperation signals a resolver mismatch in the balance engine.
// Fatal: it indicates a defect, never expected in correct code.
func ErrInvalidOperation(err error) *AppError {
	return Wrap("SYS_003", "Invalid balance operation", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("WAL_003", message, http.StatusBadRequest)
}
