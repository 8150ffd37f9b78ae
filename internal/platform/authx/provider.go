// Package authx handles the portal's view of the identity provider:
// token verification for incoming requests, the process-wide session
// store, and the readiness waiter used right after redirect sign-ins.
package authx

import "context"

// User is the identity reported by the auth provider.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Provider is the surface of the external authentication service the
// portal depends on. Subscribe delivers the current identity (nil when
// signed out) and subsequent changes; the returned function removes the
// listener.
type Provider interface {
	// CurrentUser returns the identity the provider currently reports,
	// or nil when signed out.
	CurrentUser() *User
	// Subscribe registers a state-change listener. The listener receives
	// either an identity (nil for signed-out) or a provider error.
	Subscribe(fn func(*User, error)) (unsubscribe func())
	// RefreshToken forces a token refresh for the given identity.
	RefreshToken(ctx context.Context, u *User) error
	// SignOut ends the provider session.
	SignOut(ctx context.Context) error
}

// StaticProvider reports a fixed identity. Used by the diag command and
// by tests; it never emits state changes.
type StaticProvider struct {
	User *User
}

func (p *StaticProvider) CurrentUser() *User { return p.User }

func (p *StaticProvider) Subscribe(fn func(*User, error)) func() {
	fn(p.User, nil)
	return func() {}
}

func (p *StaticProvider) RefreshToken(context.Context, *User) error { return nil }

func (p *StaticProvider) SignOut(context.Context) error {
	p.User = nil
	return nil
}
