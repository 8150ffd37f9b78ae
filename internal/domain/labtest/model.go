package labtest

import (
	"time"

	"github.com/google/uuid"
)

// Mode describes where a lab test sample is collected.
type Mode string

const (
	ModeAtCenter Mode = "at-center"
	ModeAtHome   Mode = "at-home"
)

// LabTest is a scheduled diagnostic test booked by a patient.
type LabTest struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Mode        Mode      `db:"mode" json:"mode"`
	Center      string    `db:"center" json:"center,omitempty"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduledAt"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// Upcoming reports whether the test is scheduled at or after the given instant.
func (t *LabTest) Upcoming(now time.Time) bool {
	return !t.ScheduledAt.Before(now)
}
