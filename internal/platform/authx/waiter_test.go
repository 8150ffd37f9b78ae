package authx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingProvider records whether Subscribe was ever called. Unlike
// fakeProvider it does not fire the listener on registration, so slow
// path tests control event delivery explicitly.
type countingProvider struct {
	mu         sync.Mutex
	current    *User
	subs       map[int]func(*User, error)
	nextID     int
	subscribed bool
	refreshed  int
}

func newCountingProvider(current *User) *countingProvider {
	return &countingProvider{current: current, subs: make(map[int]func(*User, error))}
}

func (p *countingProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *countingProvider) Subscribe(fn func(*User, error)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribed = true
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *countingProvider) RefreshToken(context.Context, *User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshed++
	return nil
}

func (p *countingProvider) SignOut(context.Context) error { return nil }

func (p *countingProvider) emit(u *User, err error) {
	p.mu.Lock()
	subs := make([]func(*User, error), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(u, err)
	}
}

func (p *countingProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func TestEnsureReady_FastPathSkipsSubscription(t *testing.T) {
	p := newCountingProvider(&User{UID: "u1"})

	u, err := EnsureReady(context.Background(), p, "u1", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UID != "u1" {
		t.Errorf("expected u1, got %s", u.UID)
	}
	if p.subscribed {
		t.Error("fast path must not create a subscription")
	}
	if p.refreshed != 1 {
		t.Errorf("expected one forced token refresh, got %d", p.refreshed)
	}
}

func TestEnsureReady_SlowPathResolvesOnMatchingEvent(t *testing.T) {
	p := newCountingProvider(nil)

	done := make(chan struct{})
	var got *User
	var gotErr error
	go func() {
		got, gotErr = EnsureReady(context.Background(), p, "u1", time.Second)
		close(done)
	}()

	// Wait for the subscription, then deliver a non-matching and a
	// matching event.
	for i := 0; i < 100 && p.listenerCount() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	p.emit(&User{UID: "other"}, nil)
	p.emit(&User{UID: "u1"}, nil)
	<-done

	if gotErr != nil {
		t.Fatalf("unexpected error: %v", gotErr)
	}
	if got.UID != "u1" {
		t.Errorf("expected u1, got %s", got.UID)
	}
	if p.refreshed != 1 {
		t.Errorf("expected one forced token refresh, got %d", p.refreshed)
	}
	if p.listenerCount() != 0 {
		t.Errorf("expected zero listeners after resolution, got %d", p.listenerCount())
	}
}

func TestEnsureReady_Timeout(t *testing.T) {
	p := newCountingProvider(nil)

	_, err := EnsureReady(context.Background(), p, "u1", 30*time.Millisecond)
	if !errors.Is(err, ErrAuthNotReady) {
		t.Fatalf("expected ErrAuthNotReady, got %v", err)
	}
	if p.listenerCount() != 0 {
		t.Errorf("expected zero listeners after timeout, got %d", p.listenerCount())
	}
}

func TestEnsureReady_ProviderError(t *testing.T) {
	p := newCountingProvider(nil)

	done := make(chan struct{})
	var gotErr error
	go func() {
		_, gotErr = EnsureReady(context.Background(), p, "u1", time.Second)
		close(done)
	}()

	for i := 0; i < 100 && p.listenerCount() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	want := errors.New("provider unavailable")
	p.emit(nil, want)
	<-done

	if gotErr == nil || gotErr.Error() != want.Error() {
		t.Fatalf("expected provider error, got %v", gotErr)
	}
	if p.listenerCount() != 0 {
		t.Errorf("expected zero listeners after error, got %d", p.listenerCount())
	}
}

func TestEnsureReady_ConcurrentCallsIndependent(t *testing.T) {
	p := newCountingProvider(nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, uid := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, results[i] = EnsureReady(context.Background(), p, uid, time.Second)
		}(i, uid)
	}

	for i := 0; i < 100 && p.listenerCount() < 2; i++ {
		time.Sleep(time.Millisecond)
	}
	p.emit(&User{UID: "u1"}, nil)
	p.emit(&User{UID: "u2"}, nil)
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Errorf("call %d: unexpected error %v", i, err)
		}
	}
	if p.listenerCount() != 0 {
		t.Errorf("expected zero listeners after both calls, got %d", p.listenerCount())
	}
}
