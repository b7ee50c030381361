package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error codes returned by the messaging services
const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeStorageError    = "STORAGE_ERROR"
)

// ServiceError is a typed failure surfaced to callers of the messaging services
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches any ServiceError carrying the same code, so errors.Is(err, ErrForbidden) works
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound     = &ServiceError{Code: CodeNotFound, Message: "Resource not found"}
	ErrForbidden    = &ServiceError{Code: CodeForbidden, Message: "You do not have permission to perform this action"}
	ErrUserNotFound = &ServiceError{Code: CodeUserNotFound, Message: "User not found"}
	ErrValidation   = &ServiceError{Code: CodeValidationError, Message: "Invalid request data"}
	ErrStorage      = &ServiceError{Code: CodeStorageError, Message: "Storage failure"}
)

func notFoundError(message string) error {
	return &ServiceError{Code: CodeNotFound, Message: message}
}

func forbiddenError(message string) error {
	return &ServiceError{Code: CodeForbidden, Message: message}
}

func userNotFoundError(userName string) error {
	return &ServiceError{Code: CodeUserNotFound, Message: fmt.Sprintf("User %q not found", userName)}
}

func validationError(err error) error {
	return &ServiceError{Code: CodeValidationError, Message: "Invalid request data", Err: err}
}

// storageError wraps a gorm failure; record-not-found becomes NotFound
func storageError(action string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ServiceError{Code: CodeNotFound, Message: "Resource not found", Err: err}
	}
	return &ServiceError{Code: CodeStorageError, Message: "Failed to " + action, Err: err}
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
