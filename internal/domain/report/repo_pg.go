package report

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

const reportColumns = `id, user_id, title, source, report_date, file_key, created_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.UserID, &rep.Title, &rep.Source, &rep.ReportDate, &rep.FileKey, &rep.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return &rep, nil
}

func (r *repoPG) List(ctx context.Context, userID string, after *pagination.Cursor, limit int) ([]Report, *pagination.Cursor, bool, error) {
	query := `SELECT ` + reportColumns + `
		FROM patient_reports
		WHERE user_id = $1`
	args := []any{userID}

	if after != nil {
		afterDate, err := time.Parse(time.RFC3339Nano, after.Key)
		if err != nil {
			return nil, nil, false, fmt.Errorf("invalid report cursor: %w", err)
		}
		query += ` AND (report_date, id) < ($2, $3)`
		args = append(args, afterDate, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY report_date DESC, id DESC LIMIT %d`, limit+1)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, false, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, nil, false, err
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("list reports: %w", err)
	}

	hasMore := len(reports) > limit
	if hasMore {
		reports = reports[:limit]
	}
	var next *pagination.Cursor
	if hasMore && len(reports) > 0 {
		last := reports[len(reports)-1]
		next = &pagination.Cursor{
			Key: last.ReportDate.UTC().Format(time.RFC3339Nano),
			ID:  last.ID.String(),
		}
	}
	return reports, next, hasMore, nil
}

func (r *repoPG) Create(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_reports (id, user_id, title, source, report_date, file_key)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rep.ID, rep.UserID, rep.Title, rep.Source, rep.ReportDate, rep.FileKey)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, userID string, id string) (*Report, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+reportColumns+`
		FROM patient_reports WHERE user_id = $1 AND id = $2`, userID, id)
	return scanReport(row)
}
