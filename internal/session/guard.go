package session

import (
	"context"
	"fmt"
	"time"
)

// Guard hands out one-shot keys through Store.SetNX, so an action keyed by
// session runs once even with several service replicas.
type Guard struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func NewGuard(store Store, prefix string, ttl time.Duration) *Guard {
	return &Guard{store: store, prefix: prefix, ttl: ttl}
}

// Acquire returns true for the first caller of key within the TTL.
func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.store.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", key, err)
	}
	return ok, nil
}
