package labtest

import (
	"context"
	"time"

	"github.com/medsta/portal/pkg/pagination"
)

// Clock returns the current time; injected so tests can pin "upcoming".
type Clock func() time.Time

type Service struct {
	repo Repository
	now  Clock
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now Clock) *Service {
	s.now = now
	return s
}

// Upcoming returns one page of the user's upcoming tests.
func (s *Service) Upcoming(ctx context.Context, userID string, after *pagination.Cursor, limit int) ([]LabTest, *pagination.Cursor, bool, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	return s.repo.ListUpcoming(ctx, userID, s.now(), after, limit)
}

// Fetcher adapts the service to a pagination fetch function bound to one user.
func (s *Service) Fetcher(userID string) pagination.FetchFunc[LabTest] {
	return func(ctx context.Context, after *pagination.Cursor, limit int) ([]LabTest, *pagination.Cursor, bool, error) {
		return s.Upcoming(ctx, userID, after, limit)
	}
}

func (s *Service) Book(ctx context.Context, t *LabTest) error {
	return s.repo.Create(ctx, t)
}
