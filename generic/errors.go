/*
errors.go - Centralized error kinds for every workflow

PURPOSE:
  All failure kinds in one place so the HTTP layer can map them to status
  codes without knowing which domain produced them. Domain packages build
  errors with the constructors below and never invent their own kinds.

ERROR KINDS:
  NotFound       referenced entity id does not exist
  Conflict       operation invalid for the current entity state
  Validation     malformed input (date ranges, empty orders, bad enums)
  Authorization  caller lacks the role or ownership required

USAGE:
  if order.Status != OrderDraft {
      return nil, generic.Conflict("purchase order %d is %s, not Draft", order.ID, order.Status)
  }

  if errors.Is(err, generic.ErrNotFound) { ... }
  switch generic.KindOf(err) { ... }

SEE ALSO:
  - api/errors.go: Kind -> HTTP status mapping
  - store/rdb/errors.go: translation of driver errors into kinds
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// KINDS
// =============================================================================

type Kind string

const (
	KindInternal      Kind = "internal"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
)

// Sentinels for errors.Is. Every *Error unwraps to the sentinel of its kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
)

// =============================================================================
// STRUCTURED ERROR
// =============================================================================

// Error carries a kind plus a human readable message. Field is set for
// validation failures that concern a single input field.
type Error struct {
	Kind    Kind
	Entity  string
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindValidation:
		return ErrValidation
	case KindAuthorization:
		return ErrAuthorization
	}
	return nil
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NotFound reports a missing entity, e.g. NotFound("leave", 42).
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// HELPERS
// =============================================================================

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuthorization):
		return KindAuthorization
	}
	return KindInternal
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError returns true if the error is due to the caller's input or
// the current state of the entity rather than a fault in the system.
func IsClientError(err error) bool {
	k := KindOf(err)
	return k != KindInternal && k != ""
}
