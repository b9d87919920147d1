// Package apierror provides the typed errors returned by services and the
// standardized response envelope for the API. All errors returned to clients
// go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies an error for HTTP translation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

// Machine codes sent in error.code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeCajaCerrada  = "CASH_BOX_CLOSED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
)

// Error is a business error with a Spanish, user-facing message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Status maps the error kind to an HTTP status. Conflicts are reported as
// 400 like any other rejected business rule.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg}
}

// NewValidation wraps field errors produced by the request validator.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: "Error de validación", Fields: fields}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: msg}
}

// CajaCerrada is returned when an operation needs an open till session.
func CajaCerrada(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeCajaCerrada, Message: msg}
}

// SesionNoAbierta is returned when a reversal targets a session that was closed.
func SesionNoAbierta(msg string) *Error {
	return &Error{Kind: KindConflict, Code: CodeCajaCerrada, Message: msg}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// ── Envelope ──────────────────────────────────────────────────────────────────

// Response is the canonical envelope for every API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	Timestamp string            `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
	// Details carries the raw cause; only populated in development.
	Details string `json:"details,omitempty"`
}

func OK(data interface{}, msg string) Response {
	return Response{Success: true, Message: msg, Data: data}
}

// New builds a failure envelope for a plain message (middleware rejections).
func New(code, msg string) Response {
	return Response{Success: false, Error: &ErrorBody{
		Message:   msg,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}
}

// FromError builds a failure envelope and its HTTP status from any error.
// Unknown errors become a generic 500; details are attached only when
// debug is true.
func FromError(err error, debug bool) (int, Response) {
	e, ok := As(err)
	if !ok {
		resp := New(CodeInternal, "Error interno del servidor")
		if debug {
			resp.Error.Details = err.Error()
		}
		return http.StatusInternalServerError, resp
	}
	resp := New(e.Code, e.Message)
	resp.Error.Fields = e.Fields
	return e.Status(), resp
}
