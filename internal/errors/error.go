package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryHydration Category = "hydration"
	CategoryBuild     Category = "build"
	CategoryRender    Category = "render"
	CategoryAssets    Category = "assets"
)

// PopularError is a structured error with a registered code and a hint.
type PopularError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (config, build, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PopularError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PopularError) Unwrap() error {
	return e.Wrapped
}

// LogValue lets slog print the error as a group.
func (e *PopularError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return slog.GroupValue(attrs...)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PopularError) WithSuggestion(s string) *PopularError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *PopularError) WithDetail(d string) *PopularError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *PopularError) WithDetailf(format string, args ...any) *PopularError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *PopularError) Wrap(err error) *PopularError {
	e.Wrapped = err
	return e
}

// New creates a PopularError from a registered error code.
func New(code string) *PopularError {
	template, ok := registry[code]
	if !ok {
		return &PopularError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PopularError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new PopularError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PopularError {
	return &PopularError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PopularError.
// An error that already is (or wraps) a PopularError is returned as that error.
func FromError(err error, code string) *PopularError {
	if err == nil {
		return nil
	}
	var pe *PopularError
	if stderrors.As(err, &pe) {
		return pe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is or wraps a PopularError with the given code.
func HasCode(err error, code string) bool {
	var pe *PopularError
	return stderrors.As(err, &pe) && pe.Code == code
}
