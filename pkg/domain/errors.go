package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable error category.
type ErrorKind string

// Error kinds reported by the engine.
const (
	KindDataIntegrity ErrorKind = "data_integrity"
	KindFileAccess    ErrorKind = "file_access"
	KindFileNotFound  ErrorKind = "file_not_found"
	KindParse         ErrorKind = "parse"
	KindValidation    ErrorKind = "validation"
)

// Sentinel errors for errors.Is comparisons. Matching is by kind only.
var (
	ErrDataIntegrity = &Error{Kind: KindDataIntegrity, Message: "data integrity error"}
	ErrFileAccess    = &Error{Kind: KindFileAccess, Message: "file access error"}
	ErrFileNotFound  = &Error{Kind: KindFileNotFound, Message: "file not found"}
	ErrParse         = &Error{Kind: KindParse, Message: "parse error"}
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation error"}
)

// Error carries a kind, a human message and structured detail.
type Error struct {
	Detail  map[string]any
	Err     error
	Kind    ErrorKind
	Message string
}

// NewError creates an Error of kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Detail:  make(map[string]any),
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail sets a detail entry and returns e.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = value
	return e
}

// Wrap records err as the cause and returns e.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// ToMap converts e to a plain mapping for inclusion in reports.
func (e *Error) ToMap() map[string]any {
	detail := make(map[string]any, len(e.Detail))
	for k, v := range e.Detail {
		detail[k] = v
	}
	if e.Err != nil {
		detail["cause"] = e.Err.Error()
	}
	return map[string]any{
		"kind":    string(e.Kind),
		"message": e.Message,
		"detail":  detail,
	}
}

// ErrorToMap converts any error to a report mapping.
// Errors that are not *Error are reported with kind "parse".
func ErrorToMap(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.ToMap()
	}
	return NewError(KindParse, "%v", err).ToMap()
}
