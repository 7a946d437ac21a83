package unfollowers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"unfollowframe/internal/neynar"
)

type mockGraph struct {
	followers []neynar.Follow
	following []neynar.Follow
	usernames map[int64]string

	followersErr error
	followingErr error
	userErr      map[int64]error

	userCalls atomic.Int32
	mu        sync.Mutex
	limits    []int
}

func (m *mockGraph) Followers(ctx context.Context, fid int64, limit int) ([]neynar.Follow, error) {
	m.recordLimit(limit)
	if m.followersErr != nil {
		return nil, m.followersErr
	}
	return m.followers, nil
}

func (m *mockGraph) Following(ctx context.Context, fid int64, limit int) ([]neynar.Follow, error) {
	m.recordLimit(limit)
	if m.followingErr != nil {
		return nil, m.followingErr
	}
	return m.following, nil
}

func (m *mockGraph) User(ctx context.Context, fid int64) (*neynar.User, error) {
	m.userCalls.Add(1)
	if err := m.userErr[fid]; err != nil {
		return nil, err
	}
	name, ok := m.usernames[fid]
	if !ok {
		name = fmt.Sprintf("user%d", fid)
	}
	return &neynar.User{FID: fid, Username: name}, nil
}

func (m *mockGraph) recordLimit(n int) {
	m.mu.Lock()
	m.limits = append(m.limits, n)
	m.mu.Unlock()
}

var errBoom = errors.New("boom")

func follows(fids ...int64) []neynar.Follow {
	out := make([]neynar.Follow, 0, len(fids))
	for _, fid := range fids {
		out = append(out, neynar.Follow{FID: fid, UpdatedAt: "2024-03-01T10:00:00Z"})
	}
	return out
}
