// Package http serves the household JSON API.
//
// This file holds the response builder. Writes attach refresh events in the
// X-Refresh header so a client knows which views to refetch.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"anggaran/internal/auth"
	"anggaran/internal/core"
	"anggaran/internal/objectstore"
)

// HeaderRefresh carries a JSON object of event name to event data.
const HeaderRefresh = "X-Refresh"

// Refresh events.
const (
	EventBudget       = "budget:changed"
	EventIncomes      = "incomes:changed"
	EventDebts        = "debts:changed"
	EventSinkingFunds = "sinking-funds:changed"
	EventGoals        = "goals:changed"
	EventAssets       = "assets:changed"
	EventTransactions = "transactions:changed"
	EventMenus        = "menus:changed"
	EventProfile      = "profile:changed"
	EventSession      = "session:changed"
)

// ResponseBuilder is a fluent API for JSON responses.
type ResponseBuilder struct {
	events     map[string]any
	statusCode int
	body       any
	headers    map[string]string
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		events:     make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a refresh event; nil data is sent as an empty object.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	if data == nil {
		data = struct{}{}
	}
	b.events[name] = data
	return b
}

// TriggerChanged marks collections changed together with the budget that
// depends on them.
func (b *ResponseBuilder) TriggerChanged(names ...string) *ResponseBuilder {
	for _, n := range names {
		b.Trigger(n, nil)
	}
	return b.Trigger(EventBudget, nil)
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.events) > 0 {
		if events, err := json.Marshal(b.events); err == nil {
			w.Header().Set(HeaderRefresh, string(events))
		}
	}

	if b.body == nil && b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse wraps message in the {"error": ...} body.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func UnauthorizedError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &verrs),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrDescriptionLimit),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, objectstore.ErrInvalidImage),
		errors.Is(err, objectstore.ErrInvalidKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and reports the error verbatim.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	ErrorResponse(status, errorMessage(err)).Write(w)
}

func errorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validationMessage(verrs)
	}
	return err.Error()
}
