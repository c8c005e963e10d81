// Package http provides HTTP server and handler implementations.
//
// This file implements the builder used for every JSON response so status
// codes, headers and error bodies stay consistent across handlers.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"retailtracker/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
	cookies    []*http.Cookie
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Cookie attaches a Set-Cookie header.
func (b *JSONResponseBuilder) Cookie(c *http.Cookie) *JSONResponseBuilder {
	b.cookies = append(b.cookies, c)
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(messageBody{Message: msg})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	for _, c := range b.cookies {
		http.SetCookie(w, c)
	}

	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type messageBody struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors"`
}

// ErrorResponse creates a standard {"message"} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// ValidationErrorResponse lists every offending field under "errors".
func ValidationErrorResponse(message string, fields []core.FieldError) *JSONResponseBuilder {
	if fields == nil {
		fields = []core.FieldError{}
	}
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		Body(validationBody{Message: message, Errors: fields})
}

// UnauthorizedError creates a 401 response.
func UnauthorizedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "Unauthorized").
		Header("WWW-Authenticate", `Bearer realm="retailtracker"`)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// failure names the client-facing messages of one operation.
type failure struct {
	invalid  string
	notFound string
	failed   string
}

func entryFailure(subject, verb string) failure {
	return failure{
		invalid:  "Invalid " + subject + " data",
		notFound: capitalize(subject) + " not found",
		failed:   "Failed to " + verb + " " + subject,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// ErrorFor maps err onto the response for its kind. Only unexpected
// failures are logged here; the body never carries their detail.
func ErrorFor(r *http.Request, err error, f failure) *JSONResponseBuilder {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return UnauthorizedError()
	case errors.As(err, &verr):
		return ValidationErrorResponse(f.invalid, verr.Fields)
	case errors.Is(err, core.ErrInvalidInput):
		return ValidationErrorResponse(f.invalid, nil)
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(f.notFound)
	default:
		slog.ErrorContext(r.Context(), f.failed, "error", err, "method", r.Method, "path", r.URL.Path)
		return InternalServerError(f.failed)
	}
}
