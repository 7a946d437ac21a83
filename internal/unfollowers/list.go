package unfollowers

import (
	"context"
	"log/slog"
	"sync"
)

// Source produces an unfollower list. *Fetcher satisfies it.
type Source interface {
	Fetch(ctx context.Context, fid int64) ([]Entry, error)
}

// List is the view state behind the rendered list: the last loaded entries
// and a loading flag. Fetch failures are logged and render as an empty list,
// the same as having no unfollowers.
type List struct {
	source Source
	logger *slog.Logger

	mu      sync.RWMutex
	entries []Entry
	loading bool
}

// NewList starts in the loading state, matching a view that has not
// received data yet.
func NewList(source Source, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{source: source, logger: logger, loading: true}
}

// Load replaces the entries with a fresh fetch for fid.
func (l *List) Load(ctx context.Context, fid int64) {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	entries, err := l.source.Fetch(ctx, fid)
	if err != nil {
		l.logger.Error("Error fetching unfollowers", "fid", fid, "error", err)
		entries = []Entry{}
	}

	l.mu.Lock()
	l.entries = entries
	l.loading = false
	l.mu.Unlock()
}

// Snapshot returns a copy of the entries and the loading flag.
func (l *List) Snapshot() ([]Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out, l.loading
}

// Reset drops the entries, as on unmount.
func (l *List) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
