package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medsta/portal/internal/platform/authx"
	"github.com/medsta/portal/internal/platform/filestore"
)

func authedRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := context.WithValue(req.Context(), authx.UserIDKey, "u1")
	ctx = context.WithValue(ctx, authx.UserEmailKey, "u1@example.com")
	return req.WithContext(ctx)
}

func TestHandler_List(t *testing.T) {
	repo := &mockRepo{}
	seedReports(repo, "u1", 10, 25)

	h := NewHandler(NewService(repo, filestore.NewMemoryStore()))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest("/reports"), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data    []Report `json:"data"`
		HasMore bool     `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("expected 2 reports, got %d", len(body.Data))
	}
	if body.HasMore {
		t.Error("expected has_more false")
	}
}

func TestHandler_ListUnauthenticated(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}, filestore.NewMemoryStore()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestHandler_Download(t *testing.T) {
	repo := &mockRepo{}
	files := filestore.NewMemoryStore()
	ctx := context.Background()
	if _, err := files.Put(ctx, "reports/u1/xray.pdf", "application/pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rep := &Report{UserID: "u1", Title: "Chest X-Ray", ReportDate: day(20), FileKey: "reports/u1/xray.pdf"}
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := NewHandler(NewService(repo, files))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest("/reports/"+rep.ID.String()+"/download"), rec)
	c.SetParamNames("id")
	c.SetParamValues(rep.ID.String())

	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["url"] == "" {
		t.Error("expected a download url")
	}
}

func TestHandler_DownloadMissing(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}, filestore.NewMemoryStore()))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(authedRequest("/reports/nope/download"), rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.Download(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}
