package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsta/portal/internal/platform/db"
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

func (r *repoPG) Get(ctx context.Context, userID string) (*Cart, error) {
	var (
		raw       []byte
		updatedAt time.Time
	)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT items, updated_at FROM patient_carts WHERE user_id = $1`,
		userID).Scan(&raw, &updatedAt)
	if err == pgx.ErrNoRows {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return &Cart{UserID: userID, Items: items, UpdatedAt: updatedAt}, nil
}

func (r *repoPG) Put(ctx context.Context, c *Cart) error {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_carts (user_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = now()`,
		c.UserID, raw)
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}
