package common

import "net/http"

// Error codes surfaced to API clients.
const (
	CodeValidation    = "validation_error"
	CodeAuthorization = "authorization_error"
	CodeConflict      = "conflict_error"
	CodePersistence   = "persistence_error"
	CodeNotFound      = "not_found"
)

// AppError is a typed application error carrying an HTTP status and a
// client-safe message.
type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// NewValidationError reports missing or invalid input. Never retried.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// NewAuthorizationError reports a failed role or ownership check.
func NewAuthorizationError(message string) *AppError {
	return &AppError{Code: CodeAuthorization, Status: http.StatusForbidden, Message: message}
}

// NewConflictError reports a state race such as a duplicate pending appeal.
// Callers should re-fetch current state before retrying.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

// NewPersistenceError reports a storage failure after a full rollback.
func NewPersistenceError(message string) *AppError {
	return &AppError{Code: CodePersistence, Status: http.StatusInternalServerError, Message: message}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}
