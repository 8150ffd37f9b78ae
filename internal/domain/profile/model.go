package profile

import "time"

// Profile maps to the users table. Rows are keyed by the auth
// provider's uid, not a locally generated id.
type Profile struct {
	UID           string     `db:"uid" json:"uid"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Role          *string    `db:"role" json:"role,omitempty"`
	DiagPingAt    *time.Time `db:"diag_ping_at" json:"diag_ping_at,omitempty"`
	ProvisionedAt *time.Time `db:"provisioned_at" json:"provisioned_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// RoleValue returns the role or "" when unset.
func (p *Profile) RoleValue() string {
	if p.Role == nil {
		return ""
	}
	return *p.Role
}
