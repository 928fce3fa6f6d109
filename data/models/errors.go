package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransactionFailed replaces a non-error value recovered from a panic
// inside a transaction body.
var ErrTransactionFailed = errors.New("transaction failed with a non-error value")

// ValidationError is a single field-level constraint or format violation.
// Message is meant to be shown to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects every violation found on one document, in field
// declaration order.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Messages returns the violations keyed by field. When a field has more than
// one violation the first one wins.
func (ve ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// ReferenceError means a document referenced by a write did not exist when
// the write was committed.
type ReferenceError struct {
	Collection string
	ID         string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s does not exist", singular(e.Collection), e.ID)
}

// NotFoundError means the target of a read, update or delete is missing.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", singular(e.Collection), e.ID)
}

// ConflictError is a uniqueness constraint violation. Constraint is the name
// of the violated index or constraint.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	switch e.Constraint {
	case BookingUniqueConstraint:
		return "a booking for this event and email already exists"
	case EventSlugUniqueConstraint:
		return "an event with this slug already exists"
	}
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// SlugGenerationError is returned when no free slug was found within the
// attempt bound, or when a slug lookup failed.
type SlugGenerationError struct {
	Title    string
	Attempts int
	Err      error
}

func (e *SlugGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generate slug for %q: %v", e.Title, e.Err)
	}
	return fmt.Sprintf("generate slug for %q: no free slug after %d attempts", e.Title, e.Attempts)
}

func (e *SlugGenerationError) Unwrap() error {
	return e.Err
}

func singular(collection string) string {
	switch collection {
	case EventCollection:
		return "event"
	case BookingCollection:
		return "booking"
	}
	return strings.TrimSuffix(collection, "s")
}
