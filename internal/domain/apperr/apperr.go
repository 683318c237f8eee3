// Package apperr defines the error kinds every service operation reports.
//
// Callers branch on Kind (or errors.Is against the exported sentinels), never
// on message text.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
	KindInvalidStateTransition
	KindInvalidInput
	KindStore
)

// String returns the stable wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	case KindInvalidInput:
		return "invalid_input"
	case KindStore:
		return "store_error"
	default:
		return "unknown"
	}
}

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  []FieldIssue
	Err     error
}

var (
	ErrUnauthenticated        = &Error{Kind: KindUnauthenticated}
	ErrForbidden              = &Error{Kind: KindForbidden}
	ErrValidation             = &Error{Kind: KindValidation}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
	ErrStore                  = &Error{Kind: KindStore}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	default:
		b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Validation(op string, issues []FieldIssue) error {
	return &Error{Kind: KindValidation, Op: op, Message: "payload validation failed", Fields: issues}
}

// Store passes classified errors through unchanged and classifies anything
// else as KindStore.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindStore, Op: op, Message: "store operation failed", Err: err}
}

// KindOf returns KindUnknown for nil and KindStore for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// FieldsOf returns the per-field issues carried by a validation error.
func FieldsOf(err error) []FieldIssue {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
