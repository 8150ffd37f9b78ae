package labtest

import (
	"context"
	"errors"
	"time"

	"github.com/medsta/portal/pkg/pagination"
)

var ErrNotFound = errors.New("lab test not found")

// Repository provides access to a patient's lab test bookings.
type Repository interface {
	// ListUpcoming returns tests for the user scheduled at or after now,
	// ordered by (scheduled_at, id) ascending, starting strictly after the
	// cursor when one is given. It fetches one row beyond limit to decide
	// hasMore.
	ListUpcoming(ctx context.Context, userID string, now time.Time, after *pagination.Cursor, limit int) ([]LabTest, *pagination.Cursor, bool, error)
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, userID string, id string) (*LabTest, error)
}
