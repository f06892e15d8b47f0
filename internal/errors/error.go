package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryTemplate Category = "template"
	CategoryConfig   Category = "config"
	CategoryProtocol Category = "protocol"
	CategoryPublish  Category = "publish"
)

// TNTError is a structured error with a code, the template node it refers to,
// and a suggestion on how to fix it.
type TNTError struct {
	// Code is a unique error identifier (e.g., "E002").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Node is the path of the template element involved, if any.
	Node string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *TNTError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *TNTError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a TNTError with the same code.
func (e *TNTError) Is(target error) bool {
	t, ok := target.(*TNTError)
	if !ok || e.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithNode records the template element path the error refers to.
func (e *TNTError) WithNode(path string) *TNTError {
	e.Node = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *TNTError) WithSuggestion(s string) *TNTError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *TNTError) WithDetail(d string) *TNTError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *TNTError) WithDetailf(format string, args ...any) *TNTError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *TNTError) Wrap(err error) *TNTError {
	e.Wrapped = err
	return e
}

// New creates a TNTError from a registered error code.
func New(code string) *TNTError {
	template, ok := registry[code]
	if !ok {
		return &TNTError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &TNTError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new TNTError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *TNTError {
	return &TNTError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a TNTError.
func FromError(err error, code string) *TNTError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TNTError); ok {
		return te
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first TNTError in err's chain, or "".
func Code(err error) string {
	for err != nil {
		if te, ok := err.(*TNTError); ok && te.Code != "" {
			return te.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
