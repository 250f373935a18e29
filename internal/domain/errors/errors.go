package errors

import (
	"net/http"
	"strings"

	"accounts/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() any      // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   any
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message string, details any) *BaseError {
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
func (e *BaseError) Details() any {
	return e.details
}

// WithDetails returns a copy of the error carrying details.
// The copy still matches the original with errors.Is.
func (e *BaseError) WithDetails(details any) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches any BaseError sharing the same business code, so copies made by
// WithDetails still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// Predefined error types
var (
	// Account-related errors
	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"Account not found",
		nil,
	)

	ErrAlreadyRegisteredVerified = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_REGISTERED",
		"Email already exists",
		nil,
	)

	ErrEmailInUse = NewBaseError(
		http.StatusConflict,
		"EMAIL_IN_USE",
		"Email already in use",
		nil,
	)

	ErrNoOpChange = NewBaseError(
		http.StatusBadRequest,
		"EMAIL_UNCHANGED",
		"New email is the same as the current email",
		nil,
	)

	ErrAccountCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"ACCOUNT_CREATION_FAILED",
		"Failed to create account",
		nil,
	)

	ErrAccountUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"ACCOUNT_UPDATE_FAILED",
		"Failed to update account",
		nil,
	)

	ErrInvalidPhone = NewBaseError(
		http.StatusBadRequest,
		"INVALID_PHONE",
		"Invalid phone number",
		nil,
	)

	// Token-related errors
	ErrInvalidToken = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TOKEN",
		"Invalid or expired token",
		nil,
	)

	ErrTokenIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_ISSUE_FAILED",
		"Failed to issue token",
		nil,
	)

	// Credential-related errors
	ErrWrongPassword = NewBaseError(
		http.StatusBadRequest,
		"WRONG_PASSWORD",
		"Password is incorrect",
		nil,
	)

	ErrWeakPassword = NewBaseError(
		http.StatusBadRequest,
		"WEAK_PASSWORD",
		"Password does not meet the strength requirements",
		nil,
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password",
		nil,
	)

	ErrAccountInactive = NewBaseError(
		http.StatusForbidden,
		"ACCOUNT_INACTIVE",
		"Account is inactive",
		nil,
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"Invalid or expired refresh token",
		nil,
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing error",
		nil,
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		nil,
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
		nil,
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		nil,
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authentication required",
		nil,
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		nil,
	)
)

// TokenFailureReason is the internal reason a single-use token was rejected.
type TokenFailureReason string

const (
	TokenNotFound    TokenFailureReason = "not_found"
	TokenExpired     TokenFailureReason = "expired"
	TokenAlreadyUsed TokenFailureReason = "already_used"
)

// TokenError is returned when a token fails validation or consumption.
// Every reason renders exactly like ErrInvalidToken; Reason is for logs and metrics only.
type TokenError struct {
	Reason TokenFailureReason
}

// NewTokenError creates a token rejection for the given reason.
func NewTokenError(reason TokenFailureReason) *TokenError {
	return &TokenError{Reason: reason}
}

// Error implements the error interface
func (e *TokenError) Error() string {
	return ErrInvalidToken.Message()
}

// Is makes every TokenError match ErrInvalidToken.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// HTTPCode returns the HTTP status code
func (e *TokenError) HTTPCode() int {
	return ErrInvalidToken.HTTPCode()
}

// ErrorCode returns the business error code
func (e *TokenError) ErrorCode() string {
	return ErrInvalidToken.ErrorCode()
}

// Message returns the user-friendly error message
func (e *TokenError) Message() string {
	return ErrInvalidToken.Message()
}

// Details never reveals the reason.
func (e *TokenError) Details() any {
	return nil
}

// PasswordPolicyError lists every strength rule a candidate password violated.
type PasswordPolicyError struct {
	Violations []string
}

// NewPasswordPolicyError creates a weak password error.
func NewPasswordPolicyError(violations []string) *PasswordPolicyError {
	return &PasswordPolicyError{Violations: violations}
}

// Error implements the error interface
func (e *PasswordPolicyError) Error() string {
	return ErrWeakPassword.Message() + ": " + strings.Join(e.Violations, "; ")
}

// Is makes every PasswordPolicyError match ErrWeakPassword.
func (e *PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// HTTPCode returns the HTTP status code
func (e *PasswordPolicyError) HTTPCode() int {
	return ErrWeakPassword.HTTPCode()
}

// ErrorCode returns the business error code
func (e *PasswordPolicyError) ErrorCode() string {
	return ErrWeakPassword.ErrorCode()
}

// Message returns the user-friendly error message
func (e *PasswordPolicyError) Message() string {
	return ErrWeakPassword.Message()
}

// Details returns the violated rules.
func (e *PasswordPolicyError) Details() any {
	return e.Violations
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() any {
	return e.details
}
