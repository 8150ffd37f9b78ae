// Package pagination implements keyset ("load more") pagination. A page
// is requested with an opaque cursor naming the last record already
// seen; the store returns the next page strictly after it in the list's
// ordering, plus an explicit has-more flag.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 5
	MaxLimit     = 50
)

// Cursor names the last record of a fetched page: the value of the sort
// field plus the record id as a tiebreaker.
type Cursor struct {
	Key string `json:"key"`
	ID  string `json:"id"`
}

// Encode serializes the cursor to an opaque URL-safe token.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// Decode parses a cursor token. An empty token yields a nil cursor,
// meaning "first page".
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return &c, nil
}

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Cursor *Cursor
}

// FromContext extracts pagination parameters from the echo context.
// An unparseable cursor is treated as a first-page request.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	cur, err := Decode(c.QueryParam("cursor"))
	if err != nil {
		cur = nil
	}

	return Params{Limit: limit, Cursor: cur}
}

// Response wraps one page of an API response.
type Response struct {
	Data    interface{} `json:"data"`
	Cursor  string      `json:"cursor,omitempty"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, next *Cursor, hasMore bool) *Response {
	r := &Response{Data: data, HasMore: hasMore}
	if hasMore {
		r.Cursor = next.Encode()
	}
	return r
}
