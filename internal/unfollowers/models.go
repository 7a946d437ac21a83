package unfollowers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unfollowframe/internal/neynar"
)

const (
	// FollowLimit bounds each list request; no pagination past it.
	FollowLimit = 100
	// MaxEntries caps the rendered list.
	MaxEntries = 10
)

var (
	ErrInvalidFID       = errors.New("invalid fid")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrEmptyUsername    = errors.New("empty username")
)

// Entry is one rendered unfollower. UnfollowedAt is the last update time of
// the stale follower edge; the API has no real unfollow event.
type Entry struct {
	FID          int64     `json:"fid"`
	Username     string    `json:"username"`
	UnfollowedAt time.Time `json:"unfollowed_at"`
}

// Graph is the subset of the social-graph API the fetcher needs.
type Graph interface {
	Followers(ctx context.Context, fid int64, limit int) ([]neynar.Follow, error)
	Following(ctx context.Context, fid int64, limit int) ([]neynar.Follow, error)
	User(ctx context.Context, fid int64) (*neynar.User, error)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339 and bare dates; bare dates are UTC midnight.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
