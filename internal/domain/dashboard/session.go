package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medsta/portal/internal/domain/labtest"
	"github.com/medsta/portal/internal/domain/report"
	"github.com/medsta/portal/internal/platform/connectivity"
	"github.com/medsta/portal/pkg/pagination"
)

// Session holds the incrementally loaded dashboard lists for one signed-in
// patient: upcoming lab tests and recent reports, each behind its own
// pager.
type Session struct {
	UserID   string
	labTests *pagination.Pager[labtest.LabTest]
	reports  *pagination.Pager[report.Report]
}

func (s *Session) Close() {
	s.labTests.Close()
	s.reports.Close()
}

// SessionManager tracks at most one dashboard session per user.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	labTests *labtest.Service
	reports  *report.Service
	watcher  *connectivity.Watcher
	log      zerolog.Logger
}

func NewSessionManager(labTests *labtest.Service, reports *report.Service, watcher *connectivity.Watcher, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		labTests: labTests,
		reports:  reports,
		watcher:  watcher,
		log:      log,
	}
}

// Open returns the user's session, creating it and loading first pages
// when absent. Opening twice reuses the existing session.
func (m *SessionManager) Open(ctx context.Context, userID string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s
	}
	s := &Session{
		UserID:   userID,
		labTests: pagination.NewPager("lab-tests:"+userID, pagination.DefaultLimit, m.labTests.Fetcher(userID), m.watcher, m.log),
		reports:  pagination.NewPager("reports:"+userID, pagination.DefaultLimit, m.reports.Fetcher(userID), m.watcher, m.log),
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	s.labTests.First(ctx)
	s.reports.First(ctx)
	return s
}

// Get returns the user's session or nil when none is open.
func (m *SessionManager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Close tears down the user's session. Closing an absent session is a
// no-op.
func (m *SessionManager) Close(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// LoadMoreLabTests extends the lab test list of an open session. With no
// session open for the user it silently does nothing.
func (m *SessionManager) LoadMoreLabTests(ctx context.Context, userID string) {
	if s := m.Get(userID); s != nil {
		s.labTests.LoadMore(ctx)
	}
}

// LoadMoreReports extends the report list of an open session. With no
// session open for the user it silently does nothing.
func (m *SessionManager) LoadMoreReports(ctx context.Context, userID string) {
	if s := m.Get(userID); s != nil {
		s.reports.LoadMore(ctx)
	}
}
