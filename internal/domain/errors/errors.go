package errors

import (
	"net/http"

	"libris/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Session-related errors
	ErrNotAuthenticated = NewBaseError(
		http.StatusUnauthorized,
		"NOT_AUTHENTICATED",
		"you are not logged in",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"your session has expired, please log in again",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"wrong email or password",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	// Catalog-related errors
	ErrBookNotFound = NewBaseError(
		http.StatusNotFound,
		"BOOK_NOT_FOUND",
		"book not found",
		"",
	)

	ErrInsufficientStock = NewBaseError(
		http.StatusConflict,
		"INSUFFICIENT_STOCK",
		"insufficient stock or request failed",
		"",
	)

	// Cart-related errors
	ErrCartItemNotFound = NewBaseError(
		http.StatusNotFound,
		"CART_ITEM_NOT_FOUND",
		"cart item not found",
		"",
	)

	ErrEmptyCheckout = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_CHECKOUT",
		"no books selected for checkout",
		"",
	)

	// Loan-related errors
	ErrLoanNotFound = NewBaseError(
		http.StatusNotFound,
		"LOAN_NOT_FOUND",
		"loan not found",
		"",
	)

	ErrLoanAlreadyReturned = NewBaseError(
		http.StatusConflict,
		"LOAN_ALREADY_RETURNED",
		"loan has already been returned",
		"",
	)

	// Review-related errors
	ErrReviewNotFound = NewBaseError(
		http.StatusNotFound,
		"REVIEW_NOT_FOUND",
		"review not found",
		"",
	)

	// Admin-related errors
	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	// General errors
	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"resource conflict",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)
)

// GatewayExecuteError represents a failed backend call, implementing the AppError interface.
// The details carry the raw response body text so callers can surface it.
type GatewayExecuteError struct {
	err     error
	details string
}

// NewGatewayExecuteError creates a gateway-related error
func NewGatewayExecuteError(err error, details string) AppError {
	return &GatewayExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *GatewayExecuteError) Error() string {
	return errors.Wrap(e.err, "gateway request failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *GatewayExecuteError) HTTPCode() int {
	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *GatewayExecuteError) ErrorCode() string {
	return "GATEWAY_REQUEST_FAILED"
}

// Message returns the user-friendly error message
func (e *GatewayExecuteError) Message() string {
	return "request to the library backend failed"
}

// Details returns detailed error information
func (e *GatewayExecuteError) Details() string {
	return e.details
}
