// Package connectivity tracks backend reachability and replays list
// fetches that failed while the store was unreachable. Registrations are
// deduplicated by key, so a flaky connection holds at most one pending
// retry per list.
package connectivity

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Watcher is a standing registry of pending fetches keyed by list name.
type Watcher struct {
	mu      sync.Mutex
	pending map[string]func(context.Context)
	online  bool
	log     zerolog.Logger
}

func NewWatcher(log zerolog.Logger) *Watcher {
	return &Watcher{
		pending: make(map[string]func(context.Context)),
		online:  true,
		log:     log,
	}
}

// Register arms a retry for the given key. Re-registering the same key
// replaces the previous entry rather than stacking a second retry.
func (w *Watcher) Register(key string, fn func(context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[key] = fn
	w.online = false
}

// Online marks the backend reachable and runs every pending fetch once.
func (w *Watcher) Online(ctx context.Context) {
	w.mu.Lock()
	drained := w.pending
	w.pending = make(map[string]func(context.Context))
	w.online = true
	w.mu.Unlock()

	for key, fn := range drained {
		w.log.Debug().Str("list", key).Msg("replaying fetch after reconnect")
		fn(ctx)
	}
}

// Offline marks the backend unreachable.
func (w *Watcher) Offline() {
	w.mu.Lock()
	w.online = false
	w.mu.Unlock()
}

// IsOnline reports the last observed connectivity state.
func (w *Watcher) IsOnline() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// PendingCount returns the number of armed retries.
func (w *Watcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Run polls the probe until ctx is done, flipping the watcher state and
// draining pending fetches on each offline-to-online transition.
func (w *Watcher) Run(ctx context.Context, probe func(context.Context) error, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wasOnline := w.IsOnline()
			if err := probe(ctx); err != nil {
				if wasOnline {
					w.log.Warn().Err(err).Msg("backend unreachable")
				}
				w.Offline()
				continue
			}
			if !wasOnline {
				w.log.Info().Msg("backend reachable again")
				w.Online(ctx)
			}
		}
	}
}

// IsUnavailable classifies an error as a connectivity/offline failure,
// the only class that arms a reconnect retry.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"unavailable", "offline", "connection refused", "connection reset"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
