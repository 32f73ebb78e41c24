package models

import (
	"errors"
	"fmt"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrorCodeInvalidField        ErrorCode = "INVALID_FIELD"
	ErrorCodeMissingField        ErrorCode = "MISSING_FIELD"
	ErrorCodeInsufficientStock   ErrorCode = "INSUFFICIENT_STOCK"
	ErrorCodeInventoryNotFound   ErrorCode = "INVENTORY_NOT_FOUND"
	ErrorCodeOrderNotFound       ErrorCode = "ORDER_NOT_FOUND"
	ErrorCodeDuplicateInventory  ErrorCode = "DUPLICATE_INVENTORY"
	ErrorCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrorCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrorCodeInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError     ErrorCode = "VALIDATION_ERROR"
)

const (
	ProblemTypeValidationError = "validation-error"
	ProblemTypeBusinessError   = "business-logic-error"
	ProblemTypeNotFound        = "not-found"
	ProblemTypeForbidden       = "forbidden"
	ProblemTypeUpstream        = "upstream-unavailable"
	ProblemTypeInternalError   = "internal-error"
)

// ValidationError represents malformed or missing input (400).
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Value   any    `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NotFoundError represents a referenced entity that is absent (404).
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// ConflictError represents a duplicate unique key (409).
type ConflictError struct {
	Resource string `json:"resource"`
	Reason   string `json:"reason"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with %s: %s", e.Resource, e.Reason)
}

// InsufficientStockError is the 409-class business rule raised when a
// requested quantity exceeds the available stock of an inventory record.
type InsufficientStockError struct {
	InventoryID string `json:"inventory_id"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for inventory '%s': requested %d, available %d",
		e.InventoryID, e.Requested, e.Available)
}

// AuthorizationError represents an actor acting on a resource it does
// not own (403).
type AuthorizationError struct {
	Reason string `json:"reason"`
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// UpstreamUnavailableError represents an open breaker or a remote
// timeout. Callers may retry.
type UpstreamUnavailableError struct {
	Operation string `json:"operation"`
	Cause     error  `json:"-"`
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream unavailable for %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("upstream unavailable for %s", e.Operation)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Cause
}

// InternalError wraps unexpected failures (500).
type InternalError struct {
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// Error type guards

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsInsufficientStockError(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsAuthorizationError(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

func IsUpstreamUnavailableError(err error) bool {
	var target *UpstreamUnavailableError
	return errors.As(err, &target)
}

// Error factory functions

func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}

func NewInsufficientStockError(inventoryID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{InventoryID: inventoryID, Requested: requested, Available: available}
}

func NewAuthorizationError(reason string) *AuthorizationError {
	return &AuthorizationError{Reason: reason}
}

func NewUpstreamUnavailableError(operation string, cause error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Operation: operation, Cause: cause}
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// ProblemDetails is the RFC-7807 style error body returned by the API.
type ProblemDetails struct {
	Type   string      `json:"type"`
	Title  string      `json:"title"`
	Status int         `json:"status"`
	Detail string      `json:"detail,omitempty"`
	Field  string      `json:"field,omitempty"`
	Code   string      `json:"code,omitempty"`
	Errors interface{} `json:"errors,omitempty"`
}

func NewProblemDetails(status int, title, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemType(status),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidationProblem(field, message string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeValidationError,
		Title:  "Validation Failed",
		Status: 400,
		Detail: message,
		Field:  field,
		Code:   string(code),
	}
}

func NewNotFoundProblem(resource string) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeNotFound,
		Title:  "Resource Not Found",
		Status: 404,
		Detail: resource + " not found",
	}
}

// ProblemFromError maps a typed error to its HTTP problem response.
// includeDetail controls whether internal error text is exposed.
func ProblemFromError(err error, includeDetail bool) *ProblemDetails {
	switch {
	case IsValidationError(err):
		var e *ValidationError
		errors.As(err, &e)
		return NewValidationProblem(e.Field, e.Message, ErrorCodeValidationError)
	case IsNotFoundError(err):
		var e *NotFoundError
		errors.As(err, &e)
		return NewNotFoundProblem(e.Resource)
	case IsInsufficientStockError(err):
		p := NewProblemDetails(409, "Insufficient Stock", err.Error())
		p.Code = string(ErrorCodeInsufficientStock)
		return p
	case IsConflictError(err):
		return NewProblemDetails(409, "Conflict", err.Error())
	case IsAuthorizationError(err):
		p := NewProblemDetails(403, "Forbidden", err.Error())
		p.Type = ProblemTypeForbidden
		p.Code = string(ErrorCodeForbidden)
		return p
	case IsUpstreamUnavailableError(err):
		p := NewProblemDetails(503, "Upstream Unavailable", "A dependent service is temporarily unavailable")
		p.Type = ProblemTypeUpstream
		p.Code = string(ErrorCodeUpstreamUnavailable)
		return p
	default:
		detail := "An unexpected error occurred"
		if includeDetail {
			detail = err.Error()
		}
		return NewProblemDetails(500, "Internal Server Error", detail)
	}
}

func problemType(status int) string {
	switch status {
	case 400:
		return ProblemTypeValidationError
	case 403:
		return ProblemTypeForbidden
	case 404:
		return ProblemTypeNotFound
	case 409, 422:
		return ProblemTypeBusinessError
	case 503:
		return ProblemTypeUpstream
	default:
		return ProblemTypeInternalError
	}
}
