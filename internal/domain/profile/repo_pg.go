package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsta/portal/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `uid, email, role, diag_ping_at, provisioned_at, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UID, &p.Email, &p.Role, &p.DiagPingAt, &p.ProvisionedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByUID(ctx context.Context, uid string) (*Profile, error) {
	return scanProfile(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM users WHERE uid = $1`, uid))
}

func (r *repoPG) Ensure(ctx context.Context, uid string, email *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (uid, email)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO NOTHING`,
		uid, email)
	return err
}

func (r *repoPG) Role(ctx context.Context, uid string) (string, error) {
	var role *string
	err := r.conn(ctx).QueryRow(ctx, `SELECT role FROM users WHERE uid = $1`, uid).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if role == nil {
		return "", nil
	}
	return *role, nil
}

func (r *repoPG) MergePing(ctx context.Context, uid string, email *string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (uid, email, diag_ping_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO UPDATE
		SET email = COALESCE(EXCLUDED.email, users.email),
		    diag_ping_at = EXCLUDED.diag_ping_at,
		    updated_at = NOW()`,
		uid, email, at)
	return err
}

func (r *repoPG) SetRole(ctx context.Context, uid, role string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (uid, role)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE
		SET role = EXCLUDED.role, updated_at = NOW()`,
		uid, role)
	return err
}

func (r *repoPG) MarkProvisioned(ctx context.Context, uid string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (uid, provisioned_at)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE
		SET provisioned_at = EXCLUDED.provisioned_at, updated_at = NOW()`,
		uid, at)
	return err
}
