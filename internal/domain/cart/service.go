package cart

import (
	"context"
	"errors"
	"time"
)

var ErrTooManyItems = errors.New("cart has too many items")

// MaxItems caps the number of distinct lines in one cart.
const MaxItems = 100

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	return s.repo.Get(ctx, userID)
}

// Save replaces the user's cart with the given items.
func (s *Service) Save(ctx context.Context, userID string, items []Item) (*Cart, error) {
	if len(items) > MaxItems {
		return nil, ErrTooManyItems
	}
	if items == nil {
		items = []Item{}
	}
	c := &Cart{UserID: userID, Items: items, UpdatedAt: time.Now().UTC()}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	_, err := s.Save(ctx, userID, []Item{})
	return err
}
