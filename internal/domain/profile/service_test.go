package profile

import (
	"context"
	"testing"
	"time"
)

type mockRepo struct {
	profiles map[string]*Profile
	err      error
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: make(map[string]*Profile)}
}

func (m *mockRepo) GetByUID(_ context.Context, uid string) (*Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Ensure(_ context.Context, uid string, email *string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.profiles[uid]; !ok {
		m.profiles[uid] = &Profile{UID: uid, Email: email}
	}
	return nil
}

func (m *mockRepo) Role(_ context.Context, uid string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.profiles[uid]
	if !ok || p.Role == nil {
		return "", nil
	}
	return *p.Role, nil
}

func (m *mockRepo) MergePing(_ context.Context, uid string, email *string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	p, ok := m.profiles[uid]
	if !ok {
		p = &Profile{UID: uid}
		m.profiles[uid] = p
	}
	if email != nil {
		p.Email = email
	}
	t := at
	p.DiagPingAt = &t
	return nil
}

func (m *mockRepo) SetRole(_ context.Context, uid, role string) error {
	if m.err != nil {
		return m.err
	}
	p, ok := m.profiles[uid]
	if !ok {
		p = &Profile{UID: uid}
		m.profiles[uid] = p
	}
	p.Role = &role
	return nil
}

func (m *mockRepo) MarkProvisioned(_ context.Context, uid string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	p, ok := m.profiles[uid]
	if !ok {
		p = &Profile{UID: uid}
		m.profiles[uid] = p
	}
	t := at
	p.ProvisionedAt = &t
	return nil
}

func TestService_GetExisting(t *testing.T) {
	repo := newMockRepo()
	role := "patient"
	email := "u1@example.com"
	repo.profiles["u1"] = &Profile{UID: "u1", Email: &email, Role: &role}

	svc := NewService(repo)
	p, err := svc.Get(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.RoleValue() != "patient" {
		t.Errorf("expected patient, got %q", p.RoleValue())
	}
}

func TestService_GetMissingSynthesizesFromClaims(t *testing.T) {
	svc := NewService(newMockRepo())
	p, err := svc.Get(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UID != "u1" {
		t.Errorf("expected uid u1, got %s", p.UID)
	}
	if p.Email == nil || *p.Email != "u1@example.com" {
		t.Errorf("expected email from claims, got %v", p.Email)
	}
	if p.RoleValue() != "" {
		t.Errorf("expected no role, got %q", p.RoleValue())
	}
}

func TestService_RoleMissingRowIsEmptyNotError(t *testing.T) {
	svc := NewService(newMockRepo())
	role, err := svc.Role(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != "" {
		t.Errorf("expected empty role, got %q", role)
	}
}
