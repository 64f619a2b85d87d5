package lodging

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes surfaced to callers. Every error returned by Service matches
// exactly one of these through errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("resource no longer available")
	ErrAuthorization = errors.New("authorization denied")
	ErrNotFound      = errors.New("not found")
)

// Not-found refinements.
var (
	ErrUnknownResource    = fmt.Errorf("%w: resource", ErrNotFound)
	ErrUnknownReservation = fmt.Errorf("%w: reservation", ErrNotFound)
	ErrUnknownBlackout    = fmt.Errorf("%w: blackout", ErrNotFound)
	ErrUnknownCycle       = fmt.Errorf("%w: cycle", ErrNotFound)
)

// Value-object and configuration errors.
var (
	ErrInvalidCycleID           = errors.New("invalid cycle id")
	ErrInvalidResourceID        = errors.New("invalid resource id")
	ErrInvalidReservationID     = errors.New("invalid reservation id")
	ErrInvalidBlackoutID        = errors.New("invalid blackout id")
	ErrInvalidLedgerEntryID     = errors.New("invalid ledger entry id")
	ErrInvalidUserID            = errors.New("invalid user id")
	ErrInvalidDate              = errors.New("invalid date")
	ErrInvalidDateRange         = errors.New("invalid date range")
	ErrInvalidResourceStatus    = errors.New("invalid resource status")
	ErrInvalidBlackoutKind      = errors.New("invalid blackout kind")
	ErrInvalidReservationStatus = errors.New("invalid reservation status")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")
	ErrInvalidServiceConfig     = errors.New("invalid service config")
	ErrDuplicateResourceCode    = errors.New("duplicate resource code")
)

// FieldError is a user-correctable problem attributed to one input field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Fields   []FieldError
	Conflict Conflict
}

// Error joins every field message.
func (validationError *ValidationError) Error() string {
	parts := make([]string, 0, len(validationError.Fields))
	for _, field := range validationError.Fields {
		parts = append(parts, field.Field+": "+field.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap exposes ErrValidation and, when the rejection is an availability conflict, ErrConflict.
func (validationError *ValidationError) Unwrap() []error {
	if validationError.IsConflict() {
		return []error{ErrValidation, ErrConflict}
	}
	return []error{ErrValidation}
}

// IsConflict reports whether the rejection is caused by another booking, a blackout,
// an inactive resource, or a lost write race.
func (validationError *ValidationError) IsConflict() bool {
	for _, field := range validationError.Fields {
		if field.Code == fieldCodeUnavailable {
			return true
		}
	}
	return false
}

// FieldErrors returns the errors attributed to field.
func (validationError *ValidationError) FieldErrors(field string) []FieldError {
	var matches []FieldError
	for _, candidate := range validationError.Fields {
		if candidate.Field == field {
			matches = append(matches, candidate)
		}
	}
	return matches
}

func newValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// ErrorClass is the caller-facing category of an error.
type ErrorClass string

const (
	ErrorClassNone          ErrorClass = ""
	ErrorClassValidation    ErrorClass = "validation"
	ErrorClassAuthorization ErrorClass = "authorization"
	ErrorClassNotFound      ErrorClass = "not_found"
	ErrorClassInternal      ErrorClass = "internal"
)

var malformedInputErrors = []error{
	ErrInvalidCycleID,
	ErrInvalidResourceID,
	ErrInvalidReservationID,
	ErrInvalidBlackoutID,
	ErrInvalidUserID,
	ErrInvalidDate,
	ErrInvalidDateRange,
	ErrInvalidResourceStatus,
	ErrInvalidBlackoutKind,
	ErrInvalidReservationStatus,
	ErrInvalidPaymentMethod,
}

// Classify maps err onto its ErrorClass. Malformed identifiers, dates and enum values
// count as validation failures.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ErrorClassNone
	case errors.Is(err, ErrAuthorization):
		return ErrorClassAuthorization
	case errors.Is(err, ErrNotFound):
		return ErrorClassNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return ErrorClassValidation
	}
	for _, sentinel := range malformedInputErrors {
		if errors.Is(err, sentinel) {
			return ErrorClassValidation
		}
	}
	return ErrorClassInternal
}
