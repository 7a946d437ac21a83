package unfollowers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"unfollowframe/internal/neynar"
)

// Fetcher computes the recent-unfollower list for a user. Every call goes
// to the network; nothing is cached between calls.
type Fetcher struct {
	graph  Graph
	logger *slog.Logger
}

func NewFetcher(graph Graph, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{graph: graph, logger: logger}
}

// Fetch returns at most MaxEntries unfollowers of fid. Any failing request
// fails the whole fetch; partial results are never returned.
func (f *Fetcher) Fetch(ctx context.Context, fid int64) ([]Entry, error) {
	if fid <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFID, fid)
	}

	followers, following, err := f.fetchLists(ctx, fid)
	if err != nil {
		return nil, err
	}

	stale := Truncate(Diff(followers, following), MaxEntries)

	f.logger.Debug("computed follower diff",
		"fid", fid,
		"followers", len(followers),
		"following", len(following),
		"stale", len(stale))

	return f.enrich(ctx, stale)
}

func (f *Fetcher) fetchLists(ctx context.Context, fid int64) ([]neynar.Follow, []neynar.Follow, error) {
	var followers, following []neynar.Follow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followers, err = f.graph.Followers(gctx, fid, FollowLimit)
		if err != nil {
			return fmt.Errorf("fetch followers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		following, err = f.graph.Following(gctx, fid, FollowLimit)
		if err != nil {
			return fmt.Errorf("fetch following: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return followers, following, nil
}

func (f *Fetcher) enrich(ctx context.Context, stale []neynar.Follow) ([]Entry, error) {
	entries := make([]Entry, len(stale))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range stale {
		g.Go(func() error {
			at, err := ParseTimestamp(rec.UpdatedAt)
			if err != nil {
				return fmt.Errorf("follower %d: %w", rec.FID, err)
			}

			u, err := f.graph.User(gctx, rec.FID)
			if err != nil {
				return fmt.Errorf("lookup user %d: %w", rec.FID, err)
			}
			if strings.TrimSpace(u.Username) == "" {
				return fmt.Errorf("lookup user %d: %w", rec.FID, ErrEmptyUsername)
			}

			entries[i] = Entry{
				FID:          rec.FID,
				Username:     u.Username,
				UnfollowedAt: at,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
