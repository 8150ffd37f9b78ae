package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is a finished medical report available to a patient.
type Report struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"-"`
	Title      string    `db:"title" json:"title"`
	Source     string    `db:"source" json:"source,omitempty"`
	ReportDate time.Time `db:"report_date" json:"reportDate"`
	FileKey    string    `db:"file_key" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

// HasFile reports whether a stored document is attached.
func (r *Report) HasFile() bool {
	return r.FileKey != ""
}
