package report

import (
	"context"
	"errors"

	"github.com/medsta/portal/pkg/pagination"
)

var ErrNotFound = errors.New("report not found")

// Repository provides access to a patient's medical reports.
type Repository interface {
	// List returns the user's reports ordered by (report_date, id)
	// descending, newest first, starting strictly after the cursor when
	// one is given. It fetches one row beyond limit to decide hasMore.
	List(ctx context.Context, userID string, after *pagination.Cursor, limit int) ([]Report, *pagination.Cursor, bool, error)
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, userID string, id string) (*Report, error)
}
