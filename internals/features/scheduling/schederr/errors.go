// Package schederr holds the error taxonomy shared by the scheduling core.
package schederr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FieldErrors maps a field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) Empty() bool { return len(f) == 0 }

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(f[k], ", "))
	}
	return strings.Join(parts, "; ")
}

/* =========================
   InvalidRecurrenceError
========================= */

// InvalidRecurrenceError reports a malformed recurrence configuration.
type InvalidRecurrenceError struct {
	Fields FieldErrors
}

func (e *InvalidRecurrenceError) Error() string {
	return "invalid recurrence: " + e.Fields.String()
}

/* =========================
   ValidationError
========================= */

// ValidationError reports bad input outside the recurrence block.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	f := FieldErrors{}
	f.Add(field, msg)
	return &ValidationError{Fields: f}
}

/* =========================
   NotFoundError
========================= */

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

/* =========================
   ConcurrentBookingError
========================= */

// ConcurrentBookingError wraps a unique-constraint violation raised when two
// writes race past the conflict check.
type ConcurrentBookingError struct {
	Constraint string
	Err        error
}

func (e *ConcurrentBookingError) Error() string {
	if e.Constraint != "" {
		return "concurrent booking rejected by " + e.Constraint
	}
	return "concurrent booking rejected"
}

func (e *ConcurrentBookingError) Unwrap() error { return e.Err }

/* =========================
   Helpers
========================= */

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConcurrentBooking(err error) bool {
	var cb *ConcurrentBookingError
	return errors.As(err, &cb)
}

// RetryConcurrent runs fn and, when it fails with a ConcurrentBookingError,
// runs it exactly once more. fn is expected to re-check conflicts itself.
func RetryConcurrent(fn func() error) error {
	err := fn()
	if IsConcurrentBooking(err) {
		err = fn()
	}
	return err
}
