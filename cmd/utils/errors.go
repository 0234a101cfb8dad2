package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// FieldErrors maps a rejected input field to the reason it was rejected.
type FieldErrors map[string]string

type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string, fields FieldErrors) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError covers both truly absent rows and soft-deleted ones; callers
// must not be able to tell the two apart.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// AccessDeniedError means a file reference resolved outside the storage root.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// ConflictError is reserved for uniqueness violations (duplicate handles).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type APIResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Errors  FieldErrors `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResult{Success: true, Data: data})
}

// WriteError maps an error kind to its HTTP status and the stable error
// envelope. Anything unrecognized is logged and surfaced as a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{Code: "INTERNAL_SERVER_ERROR", Message: "internal server error"}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		forbiddenErr  *ForbiddenError
		deniedErr     *AccessDeniedError
		storageErr    *StorageError
		conflictErr   *ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body = ErrorBody{Code: "VALIDATION_ERROR", Message: validationErr.Message, Errors: validationErr.Fields}
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		body = ErrorBody{Code: "NOT_FOUND", Message: notFoundErr.Error()}
	case errors.As(err, &forbiddenErr):
		status = http.StatusForbidden
		body = ErrorBody{Code: "FORBIDDEN", Message: forbiddenErr.Message}
	case errors.As(err, &deniedErr):
		status = http.StatusForbidden
		body = ErrorBody{Code: "ACCESS_DENIED", Message: deniedErr.Message}
	case errors.As(err, &storageErr):
		Logger.Error("storage failure", zap.Error(err))
		body = ErrorBody{Code: "STORAGE_FAILURE", Message: "file storage operation failed"}
	case errors.As(err, &conflictErr):
		status = http.StatusConflict
		body = ErrorBody{Code: "CONFLICT", Message: conflictErr.Message}
	default:
		Logger.Error("unhandled error", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResult{Success: false, Data: body})
}
