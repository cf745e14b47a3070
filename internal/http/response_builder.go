package http

// Builder for JSON responses and the mapping from errors to status codes.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/board"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/state"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the response. A value that cannot be encoded becomes a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body, err := json.Marshal(b.data)
	if err != nil {
		body = []byte(`{"error":"internal error"}`)
		b.statusCode = http.StatusInternalServerError
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Data(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// StatusForError maps validation errors to 400, a missing selection to 409,
// cancellations to 503 and everything else to 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidFilter),
		errors.Is(err, state.ErrInvalidSelection),
		errors.Is(err, ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError logs server-side failures and writes the JSON error. Internal
// details are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, operation, log.ErrorTypeInternal, nil)
		if status == http.StatusInternalServerError {
			InternalServerError().Write(w)
			return
		}
		ErrorResponse(status, "request cancelled").Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}
