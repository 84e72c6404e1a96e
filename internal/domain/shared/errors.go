// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "participant", "matching", "scheduling"
	Op      string // Operation that failed, e.g., "FindMatches", "Score"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Participant domain errors
var (
	ErrParticipantNotFound  = NewDomainError("participant", "Find", ErrNotFound, "participant not found")
	ErrInvalidParticipantID = NewDomainError("participant", "Validate", ErrInvalidID, "invalid participant ID")
	ErrInvalidAcademicLevel = NewDomainError("participant", "Validate", ErrValueOutOfRange, "invalid academic level")
	ErrInvalidProficiency   = NewDomainError("participant", "Validate", ErrValueOutOfRange, "invalid proficiency level")
	ErrIncompleteProfile    = NewDomainError("participant", "CheckProfile", ErrInvalidState, "participant profile is incomplete")
	ErrInvalidAvailability  = NewDomainError("participant", "Validate", ErrInvalidFormat, "invalid availability window")
)

// Matching domain errors
var (
	ErrNilRequester        = NewDomainError("matching", "FindMatches", ErrValidation, "requester is required")
	ErrInvalidLimit        = NewDomainError("matching", "FindMatches", ErrValidation, "limit must be positive")
	ErrInvalidCriteria     = NewDomainError("matching", "Validate", ErrValidation, "invalid match criteria")
	ErrInvalidScoreWeights = NewDomainError("matching", "Validate", ErrValueOutOfRange, "score weights must sum to 1.0")
)

// Scheduling domain errors
var (
	ErrInvalidDuration        = NewDomainError("scheduling", "FindSlots", ErrValidation, "required duration must be positive")
	ErrInvalidMinParticipants = NewDomainError("scheduling", "FindSlots", ErrValidation, "minimum participants must be positive")
	ErrInvalidInterval        = NewDomainError("scheduling", "Validate", ErrInvalidInput, "interval start must precede end")
)

// Recommendation domain errors
var (
	ErrUnknownStrategy = NewDomainError("recommendation", "Recommend", ErrInvalidInput, "unknown recommendation strategy")
)
