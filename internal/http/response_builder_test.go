package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"anggaran/internal/auth"
	"anggaran/internal/core"
	"anggaran/internal/objectstore"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]int{"amount": 65000}).
		Header("Cache-Control", "no-store").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"amount":65000}` {
		t.Errorf("Body = %q", body)
	}
	if w.Header().Get(HeaderRefresh) != "" {
		t.Errorf("unexpected %s header", HeaderRefresh)
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		TriggerChanged(EventTransactions, EventDebts).
		Trigger(EventSession, map[string]string{"type": "SIGNED_IN"}).
		Write(w)

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get(HeaderRefresh)), &events); err != nil {
		t.Fatalf("decode %s: %v", HeaderRefresh, err)
	}
	for _, name := range []string{EventTransactions, EventDebts, EventBudget, EventSession} {
		if _, ok := events[name]; !ok {
			t.Errorf("missing event %q in %v", name, events)
		}
	}
	if got := string(events[EventSession]); got != `{"type":"SIGNED_IN"}` {
		t.Errorf("session payload = %s", got)
	}
	if got := string(events[EventBudget]); got != `{}` {
		t.Errorf("budget payload = %s, want {}", got)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	UnprocessableEntityError("amount is required").Write(w)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status code = %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"amount is required"}` {
		t.Errorf("Body = %q", body)
	}
}

func TestStatusFor(t *testing.T) {
	var verrs validator.ValidationErrors
	verr := validate.Struct(struct {
		Name string `json:"name" validate:"required"`
	}{})
	if !errors.As(verr, &verrs) {
		t.Fatalf("expected validation errors, got %v", verr)
	}

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get debt: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrForbidden, http.StatusForbidden},
		{auth.ErrSessionExpired, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{core.ErrConflict, http.StatusConflict},
		{verr, http.StatusUnprocessableEntity},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{core.ErrDescriptionLimit, http.StatusUnprocessableEntity},
		{auth.ErrWeakPassword, http.StatusUnprocessableEntity},
		{auth.ErrPasswordTooLong, http.StatusUnprocessableEntity},
		{objectstore.ErrInvalidImage, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: empty body", errBadRequest), http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}

	if msg := errorMessage(verr); msg != "name is required" {
		t.Errorf("errorMessage = %q", msg)
	}
}
