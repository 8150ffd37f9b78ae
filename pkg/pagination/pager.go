package pagination

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medsta/portal/internal/platform/connectivity"
)

// FetchFunc retrieves one page of records after the given cursor.
// A nil cursor requests the first page.
type FetchFunc[T any] func(ctx context.Context, after *Cursor, limit int) (items []T, next *Cursor, hasMore bool, err error)

// Pager accumulates an incrementally loaded list and the cursor for the
// next page. The cursor is nil both before anything is loaded and after
// the store reports end-of-results, and LoadMore is a no-op in either
// state. Fetch failures classified as connectivity problems arm a retry
// with the watcher; any other failure is logged and the list keeps its
// previous contents.
type Pager[T any] struct {
	mu      sync.Mutex
	fetch   FetchFunc[T]
	limit   int
	key     string
	watcher *connectivity.Watcher
	log     zerolog.Logger

	items  []T
	cursor *Cursor
	loaded bool
	closed bool
}

func NewPager[T any](key string, limit int, fetch FetchFunc[T], watcher *connectivity.Watcher, log zerolog.Logger) *Pager[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager[T]{
		fetch:   fetch,
		limit:   limit,
		key:     key,
		watcher: watcher,
		log:     log,
	}
}

// First discards any loaded state and fetches the first page.
func (p *Pager[T]) First(ctx context.Context) {
	items, next, hasMore, err := p.fetch(ctx, nil, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if err != nil {
		p.handleErr(err, func(ctx context.Context) { p.First(ctx) })
		return
	}

	p.items = items
	p.loaded = true
	if hasMore {
		p.cursor = next
	} else {
		p.cursor = nil
	}
}

// LoadMore fetches the page after the held cursor and appends it. It is
// a no-op when no cursor is held.
func (p *Pager[T]) LoadMore(ctx context.Context) {
	p.mu.Lock()
	cur := p.cursor
	p.mu.Unlock()
	if cur == nil {
		return
	}

	items, next, hasMore, err := p.fetch(ctx, cur, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if err != nil {
		p.handleErr(err, func(ctx context.Context) { p.LoadMore(ctx) })
		return
	}

	p.items = append(p.items, items...)
	if hasMore {
		p.cursor = next
	} else {
		p.cursor = nil
	}
}

// handleErr is called with p.mu held.
func (p *Pager[T]) handleErr(err error, retry func(context.Context)) {
	if connectivity.IsUnavailable(err) {
		p.watcher.Register(p.key, retry)
		return
	}
	p.log.Warn().Err(err).Str("list", p.key).Msg("list fetch failed")
}

// Items returns a copy of the loaded records.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Exhausted reports whether further LoadMore calls would be no-ops.
func (p *Pager[T]) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor == nil
}

// Loaded reports whether a first page has been fetched successfully.
func (p *Pager[T]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Cursor returns the held cursor token, or "" when exhausted.
func (p *Pager[T]) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor.Encode()
}

// Close marks the pager torn down; fetches that resolve afterwards do
// not touch its state.
func (p *Pager[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
