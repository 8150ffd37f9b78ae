package authx

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultReadyTimeout bounds how long EnsureReady waits for the
// provider to report the expected identity.
const DefaultReadyTimeout = 8 * time.Second

// ErrAuthNotReady is returned when the expected identity does not become
// current within the timeout.
var ErrAuthNotReady = errors.New("auth not ready after timeout")

// EnsureReady returns the expected identity with a freshly refreshed
// token, waiting for the provider to confirm it if necessary. It guards
// the window right after a redirect sign-in where the provider has not
// yet propagated the new session.
func EnsureReady(ctx context.Context, p Provider, expectedUID string, timeout time.Duration) (*User, error) {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	// Fast path: the provider already reports the expected identity.
	if current := p.CurrentUser(); current != nil && current.UID == expectedUID {
		if err := p.RefreshToken(ctx, current); err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		return current, nil
	}

	type result struct {
		user *User
		err  error
	}
	ch := make(chan result, 1)

	unsub := p.Subscribe(func(u *User, err error) {
		if err != nil {
			select {
			case ch <- result{err: err}:
			default:
			}
			return
		}
		if u != nil && u.UID == expectedUID {
			select {
			case ch <- result{user: u}:
			default:
			}
		}
	})
	defer unsub()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if err := p.RefreshToken(ctx, r.user); err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		return r.user, nil
	case <-timer.C:
		return nil, ErrAuthNotReady
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
