package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCursor_RoundTrip(t *testing.T) {
	c := &Cursor{Key: "2024-01-02T00:00:00Z", ID: "rec-42"}
	token := c.Encode()
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := Decode(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Key != c.Key || got.ID != c.ID {
		t.Errorf("round trip mismatch: %+v != %+v", got, c)
	}
}

func TestDecode_EmptyIsFirstPage(t *testing.T) {
	c, err := Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil cursor, got %+v", c)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode("!!!not-base64!!!"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestEncode_NilCursor(t *testing.T) {
	var c *Cursor
	if got := c.Encode(); got != "" {
		t.Errorf("expected empty token for nil cursor, got %q", got)
	}
}

func newCtx(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newCtx("/"))
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Cursor != nil {
		t.Errorf("expected nil cursor, got %+v", p.Cursor)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := FromContext(newCtx("/?limit=9999"))
	if p.Limit != MaxLimit {
		t.Errorf("expected clamped limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_BadCursorMeansFirstPage(t *testing.T) {
	p := FromContext(newCtx("/?cursor=%21%21%21"))
	if p.Cursor != nil {
		t.Errorf("expected nil cursor for garbage token, got %+v", p.Cursor)
	}
}

func TestFromContext_ValidCursor(t *testing.T) {
	token := (&Cursor{Key: "k", ID: "1"}).Encode()
	p := FromContext(newCtx("/?cursor=" + token))
	if p.Cursor == nil || p.Cursor.ID != "1" {
		t.Errorf("expected decoded cursor, got %+v", p.Cursor)
	}
}

func TestNewResponse_OmitsCursorWhenExhausted(t *testing.T) {
	r := NewResponse([]string{"a"}, &Cursor{Key: "k", ID: "1"}, false)
	if r.Cursor != "" {
		t.Errorf("expected no cursor on exhausted page, got %q", r.Cursor)
	}
	r = NewResponse([]string{"a"}, &Cursor{Key: "k", ID: "1"}, true)
	if r.Cursor == "" {
		t.Error("expected cursor when more pages remain")
	}
}
