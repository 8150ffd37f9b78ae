package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
)

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := context.WithValue(req.Context(), authx.UserIDKey, "u1")
	ctx = context.WithValue(ctx, authx.UserEmailKey, "u1@example.com")
	return req.WithContext(ctx)
}

func TestHandler_GetEmptyCart(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest(http.MethodGet, "/cart", ""), rec)

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var crt Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(crt.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(crt.Items))
	}
}

func TestHandler_PutThenGet(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	payload := `{"items":[{"id":"1","name":"Paracetamol 500mg","qty":2,"price":25,"pharmacy":"City Pharmacy"}]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest(http.MethodPut, "/cart", payload), rec)
	if err := h.Put(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(authedRequest(http.MethodGet, "/cart", ""), rec)
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var crt Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(crt.Items) != 1 || crt.Items[0].Name != "Paracetamol 500mg" {
		t.Errorf("unexpected cart contents: %#v", crt.Items)
	}
}

func TestHandler_PutInvalidPayload(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest(http.MethodPut, "/cart", `{not-json`), rec)
	err := h.Put(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_Unauthenticated(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestHandler_Clear(t *testing.T) {
	repo := newMockRepo()
	h := NewHandler(NewService(repo))
	e := echo.New()

	if _, err := NewService(repo).Save(context.Background(), "u1", []Item{{ID: "1", Name: "A", Qty: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest(http.MethodDelete, "/cart", ""), rec)
	if err := h.Clear(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
