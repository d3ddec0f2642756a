package errors

import "fmt"

// ErrorCode represents a Tome error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrSkillAlreadyExists ErrorCode = "SKILL_ALREADY_EXISTS" // 409
	ErrNoUsesLeft         ErrorCode = "NO_USES_LEFT"         // 409
	ErrValidationFailed   ErrorCode = "VALIDATION_FAILED"    // 422
	ErrInternal           ErrorCode = "INTERNAL"             // 500
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TomeError represents a structured error with code, status, and details.
// Message is always safe to show to the user.
type TomeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is the underlying storage error, kept for logging only.
	cause error
}

// Error implements the error interface.
func (e *TomeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TomeError) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error for diagnostics, or nil.
func (e *TomeError) Cause() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TomeError {
	return &TomeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing record of the given kind.
func NewNotFound(kind, id string) *TomeError {
	return &TomeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewSkillAlreadyExists creates a 409 error for a duplicate skill name on a character.
func NewSkillAlreadyExists(characterID, name string) *TomeError {
	return &TomeError{
		Code:    ErrSkillAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("skill %q already exists on this character", name),
		Details: map[string]any{"character_id": characterID, "name": name},
	}
}

// NewNoUsesLeft creates a 409 error when a limited-use feature is exhausted.
func NewNoUsesLeft(name string) *TomeError {
	return &TomeError{
		Code:    ErrNoUsesLeft,
		Status:  409,
		Message: fmt.Sprintf("%s has no uses left until the next rest", name),
		Details: map[string]any{"name": name},
	}
}

// NewValidationFailed creates a 422 error carrying per-field messages.
func NewValidationFailed(fields []FieldError) *TomeError {
	msg := "character is invalid"
	if len(fields) == 1 {
		msg = fields[0].Message
	} else if len(fields) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", fields[0].Message, len(fields)-1)
	}
	return &TomeError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"fields": fields},
	}
}

// NewInternal creates a 500 error for an unexpected storage or internal failure.
// The cause is kept for logging; the message is generic.
func NewInternal(err error) *TomeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TomeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewStorageFailure creates a 500 error for a failed user action.
// The message names the action; the storage error is only reachable through Cause.
func NewStorageFailure(action string, err error) *TomeError {
	return &TomeError{
		Code:    ErrInternal,
		Status:  500,
		Message: fmt.Sprintf("failed to %s", action),
		cause:   err,
	}
}

// Is checks if an error is a TomeError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TomeError); ok {
		return tErr.Code == code
	}
	return false
}

// Fields returns the per-field validation messages carried by err, if any.
func Fields(err error) []FieldError {
	tErr, ok := err.(*TomeError)
	if !ok || tErr.Details == nil {
		return nil
	}
	fields, _ := tErr.Details["fields"].([]FieldError)
	return fields
}
