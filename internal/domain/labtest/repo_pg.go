package labtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsta/portal/internal/platform/db"
	"github.com/medsta/portal/pkg/pagination"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepositoryPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labTestColumns = `id, user_id, name, mode, center, scheduled_at, created_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Mode, &t.Center, &t.ScheduledAt, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lab test: %w", err)
	}
	return &t, nil
}

func (r *repoPG) ListUpcoming(ctx context.Context, userID string, now time.Time, after *pagination.Cursor, limit int) ([]LabTest, *pagination.Cursor, bool, error) {
	query := `SELECT ` + labTestColumns + `
		FROM patient_lab_tests
		WHERE user_id = $1 AND scheduled_at >= $2`
	args := []any{userID, now}

	if after != nil {
		afterAt, err := time.Parse(time.RFC3339Nano, after.Key)
		if err != nil {
			return nil, nil, false, fmt.Errorf("invalid lab test cursor: %w", err)
		}
		query += ` AND (scheduled_at, id) > ($3, $4)`
		args = append(args, afterAt, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY scheduled_at, id LIMIT %d`, limit+1)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, false, fmt.Errorf("list upcoming lab tests: %w", err)
	}
	defer rows.Close()

	var tests []LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, nil, false, err
		}
		tests = append(tests, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("list upcoming lab tests: %w", err)
	}

	hasMore := len(tests) > limit
	if hasMore {
		tests = tests[:limit]
	}
	var next *pagination.Cursor
	if hasMore && len(tests) > 0 {
		last := tests[len(tests)-1]
		next = &pagination.Cursor{
			Key: last.ScheduledAt.UTC().Format(time.RFC3339Nano),
			ID:  last.ID.String(),
		}
	}
	return tests, next, hasMore, nil
}

func (r *repoPG) Create(ctx context.Context, t *LabTest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_lab_tests (id, user_id, name, mode, center, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, t.Name, t.Mode, t.Center, t.ScheduledAt)
	if err != nil {
		return fmt.Errorf("create lab test: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, userID string, id string) (*LabTest, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+labTestColumns+`
		FROM patient_lab_tests WHERE user_id = $1 AND id = $2`, userID, id)
	return scanLabTest(row)
}
