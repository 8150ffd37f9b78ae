package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no profile row exists for a uid.
var ErrNotFound = errors.New("profile not found")

type Repository interface {
	GetByUID(ctx context.Context, uid string) (*Profile, error)
	// Ensure creates the profile row when absent; existing fields are
	// left untouched.
	Ensure(ctx context.Context, uid string, email *string) error
	// Role returns the stored role for a uid, or "" when the row or the
	// role field is absent. It only fails on store errors.
	Role(ctx context.Context, uid string) (string, error)
	// MergePing upserts the diagnostics marker and email without
	// touching other fields.
	MergePing(ctx context.Context, uid string, email *string, at time.Time) error
	// SetRole upserts the role field.
	SetRole(ctx context.Context, uid, role string) error
	// MarkProvisioned records that default records were created.
	MarkProvisioned(ctx context.Context, uid string, at time.Time) error
}
