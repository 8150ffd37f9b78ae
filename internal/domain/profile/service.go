package profile

import (
	"context"
	"errors"
)

type Service struct {
	profiles Repository
}

func NewService(profiles Repository) *Service {
	return &Service{profiles: profiles}
}

// Get returns the stored profile for a uid. When no row exists yet the
// caller's identity claims are all there is, so a minimal profile is
// synthesized rather than failing the page.
func (s *Service) Get(ctx context.Context, uid, email string) (*Profile, error) {
	p, err := s.profiles.GetByUID(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		out := &Profile{UID: uid}
		if email != "" {
			out.Email = &email
		}
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Role implements the session store's role lookup.
func (s *Service) Role(ctx context.Context, uid string) (string, error) {
	return s.profiles.Role(ctx, uid)
}
