package authx

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RoleReader looks up a user's authorization role in the document store.
type RoleReader interface {
	Role(ctx context.Context, uid string) (string, error)
}

const roleLookupTimeout = 10 * time.Second

// SessionStore tracks the signed-in identity and its role, kept current
// through a provider subscription. Role lookups that fail (offline
// store) fall back to the persisted role cache instead of failing the
// session.
type SessionStore struct {
	provider Provider
	roles    RoleReader
	cache    *RoleCache
	log      zerolog.Logger

	mu      sync.Mutex
	user    *User
	role    string
	loading bool
	started bool
	unsub   func()
}

func NewSessionStore(provider Provider, roles RoleReader, cache *RoleCache, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		provider: provider,
		roles:    roles,
		cache:    cache,
		log:      log,
		loading:  true,
	}
}

// Start subscribes to provider state changes. Calling it again is a
// no-op.
func (s *SessionStore) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.unsub = s.provider.Subscribe(s.onStateChange)
}

func (s *SessionStore) onStateChange(u *User, err error) {
	if err != nil {
		s.log.Warn().Err(err).Msg("auth state error")
		return
	}

	if u == nil {
		s.cache.Clear()
		s.mu.Lock()
		s.user = nil
		s.role = ""
		s.loading = false
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), roleLookupTimeout)
	defer cancel()

	role, lookupErr := s.roles.Role(ctx, u.UID)
	if lookupErr != nil {
		// Offline or store error: degrade to the cached role.
		role = s.cache.Get()
		s.log.Debug().Err(lookupErr).Str("uid", u.UID).Msg("role lookup failed, using cached role")
	} else {
		s.cache.Put(role)
	}

	s.mu.Lock()
	s.user = u
	s.role = role
	s.loading = false
	s.mu.Unlock()
}

// Current returns the signed-in identity and its role. The identity is
// nil when signed out.
func (s *SessionStore) Current() (*User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.role
}

// Loading reports whether the first provider event has arrived yet.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SignOut ends the provider session.
func (s *SessionStore) SignOut(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

// Stop removes the provider subscription.
func (s *SessionStore) Stop() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}
