package core

import (
	"errors"
	"strings"
)

// Error kinds. Callers classify failures with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUnexpected      = errors.New("unexpected error")
)

// Field level validation failures.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountTooLarge   = errors.New("amount too large")
	ErrEmptyDate        = errors.New("date is required")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyCategory    = errors.New("category is required")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidEntryKind = errors.New("invalid transaction type")
	ErrTextTooLong      = errors.New("text too long (max 500 characters)")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumerates every offending field of a request.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// Add records a failure for field.
func (v *ValidationError) Add(field string, err error) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: err.Error()})
}

// Empty reports whether no failures were recorded.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// Err returns nil when empty, otherwise a copy of v as an error.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	out := &ValidationError{Fields: append([]FieldError(nil), v.Fields...)}
	return out
}

func (v *ValidationError) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Has reports whether field failed validation.
func (v *ValidationError) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
