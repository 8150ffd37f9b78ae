package dashboard

import (
	"context"

	"github.com/medsta/portal/internal/domain/cart"
	"github.com/medsta/portal/internal/domain/labtest"
	"github.com/medsta/portal/internal/domain/report"
)

// ListView is one dashboard list plus its load-more state.
type ListView[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"hasMore"`
}

// View is the aggregated dashboard for one patient.
type View struct {
	LabTests ListView[labtest.LabTest] `json:"labTests"`
	Reports  ListView[report.Report]   `json:"reports"`
	Cart     *cart.Cart                `json:"cart"`
}

// Service assembles the dashboard view from session state and the cart.
type Service struct {
	sessions *SessionManager
	carts    *cart.Service
}

func NewService(sessions *SessionManager, carts *cart.Service) *Service {
	return &Service{sessions: sessions, carts: carts}
}

func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// View opens (or reuses) the user's session and returns the aggregated
// dashboard. The cart load is best-effort: a cart failure degrades to an
// empty cart rather than failing the whole dashboard.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	sess := s.sessions.Open(ctx, userID)

	crt, err := s.carts.Get(ctx, userID)
	if err != nil {
		crt = &cart.Cart{UserID: userID, Items: []cart.Item{}}
	}

	return &View{
		LabTests: ListView[labtest.LabTest]{
			Items:   sess.labTests.Items(),
			HasMore: !sess.labTests.Exhausted(),
		},
		Reports: ListView[report.Report]{
			Items:   sess.reports.Items(),
			HasMore: !sess.reports.Exhausted(),
		},
		Cart: crt,
	}, nil
}

// LoadMoreLabTests extends the lab test list, then returns the fresh view.
func (s *Service) LoadMoreLabTests(ctx context.Context, userID string) (*View, error) {
	s.sessions.LoadMoreLabTests(ctx, userID)
	return s.View(ctx, userID)
}

// LoadMoreReports extends the report list, then returns the fresh view.
func (s *Service) LoadMoreReports(ctx context.Context, userID string) (*View, error) {
	s.sessions.LoadMoreReports(ctx, userID)
	return s.View(ctx, userID)
}

// SignOut drops the user's dashboard session.
func (s *Service) SignOut(userID string) {
	s.sessions.Close(userID)
}
