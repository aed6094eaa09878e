package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses at the handler layer.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrSessionNotFound  = errors.New("bulk session not found")

	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	// Bulk pipeline preconditions.
	ErrSubjectRequired    = errors.New("subject is required")
	ErrCountOutOfRange    = errors.New("question count must be between 1 and 50")
	ErrImportFileTooShort = errors.New("import file must contain a header and at least one row")
	ErrEmptyQuestionBank  = errors.New("no questions found for this subject")
	ErrNoSelection        = errors.New("select at least one question to export")
	ErrWrongSessionMode   = errors.New("operation not allowed in current session mode")
)

// ValidationError carries a field-level failure out of a service.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// PermissionError describes a denied operation on a resource.
type PermissionError struct {
	UserID    string `json:"user_id"`
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

func NewPermissionError(userID, resource, operation, reason string) *PermissionError {
	return &PermissionError{
		UserID:    userID,
		Resource:  resource,
		Operation: operation,
		Reason:    reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s: %s", e.Operation, e.Resource, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// InvalidSubmissionError blocks a bulk submission that still contains
// invalid questions.
type InvalidSubmissionError struct {
	InvalidCount int `json:"invalid_count"`
}

func (e *InvalidSubmissionError) Error() string {
	return fmt.Sprintf("%d questions have validation errors", e.InvalidCount)
}

func (e *InvalidSubmissionError) Is(target error) bool {
	return target == ErrValidationFailed
}
