package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies compare equal to the sentinel
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// WithMessage returns a copy of the domain error carrying a more specific message
func WithMessage(domainErr *DomainError, message string) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: message,
	}
}

// Predefined domain errors
var (
	// Validation errors
	ErrValidation = NewDomainError("VALIDATION_ERROR", "validation failed")

	// User errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrDuplicateEmail     = NewDomainError("DUPLICATE_EMAIL", "user with this email already exists")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountLocked      = NewDomainError("ACCOUNT_LOCKED", "account is temporarily locked due to too many failed login attempts")

	// Authentication errors
	ErrUnauthorized            = NewDomainError("UNAUTHORIZED", "authentication required")
	ErrExpiredToken            = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrMalformedToken          = NewDomainError("MALFORMED_TOKEN", "invalid token")
	ErrTokenVerificationFailed = NewDomainError("TOKEN_VERIFICATION_FAILED", "token verification failed")
	ErrInvalidRefreshToken     = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")
	ErrInvalidOrExpiredToken   = NewDomainError("INVALID_OR_EXPIRED_TOKEN", "invalid or expired reset token")
	ErrInsufficientPermissions = NewDomainError("INSUFFICIENT_PERMISSIONS", "insufficient permissions")
	ErrRateLimitExceeded       = NewDomainError("RATE_LIMIT_EXCEEDED", "too many requests, please try again later")

	// Learning errors
	ErrNotFound           = NewDomainError("NOT_FOUND", "resource not found")
	ErrCourseNotFound     = NewDomainError("COURSE_NOT_FOUND", "course not found")
	ErrAssessmentNotFound = NewDomainError("ASSESSMENT_NOT_FOUND", "assessment not found")
	ErrAlreadyEnrolled    = NewDomainError("ALREADY_ENROLLED", "already enrolled in this course")
	ErrNotEnrolled        = NewDomainError("NOT_ENROLLED", "not enrolled in this course")
	ErrMaxAttemptsReached = NewDomainError("MAX_ATTEMPTS_REACHED", "maximum attempts reached for this assessment")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "VALIDATION_ERROR", "DUPLICATE_EMAIL", "INVALID_OR_EXPIRED_TOKEN",
		"ALREADY_ENROLLED", "NOT_ENROLLED", "MAX_ATTEMPTS_REACHED":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "ACCOUNT_LOCKED", "TOKEN_EXPIRED",
		"MALFORMED_TOKEN", "TOKEN_VERIFICATION_FAILED", "INVALID_REFRESH_TOKEN":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "INSUFFICIENT_PERMISSIONS":
		return http.StatusForbidden

	// 404 Not Found
	case "NOT_FOUND", "USER_NOT_FOUND", "COURSE_NOT_FOUND", "ASSESSMENT_NOT_FOUND":
		return http.StatusNotFound

	// 429 Too Many Requests
	case "RATE_LIMIT_EXCEEDED":
		return http.StatusTooManyRequests

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage returns a message that is safe to show to clients.
// Non-domain errors and internal errors never leak their details.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == ErrInternal.Code {
			return ErrInternal.Message
		}
		return domainErr.Message
	}

	return ErrInternal.Message
}

// GetErrorCode returns the domain code of err or INTERNAL_ERROR
func GetErrorCode(err error) string {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return ErrInternal.Code
}
