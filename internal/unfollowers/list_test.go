package unfollowers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"unfollowframe/internal/logger"
)

type sourceFunc func(ctx context.Context, fid int64) ([]Entry, error)

func (f sourceFunc) Fetch(ctx context.Context, fid int64) ([]Entry, error) { return f(ctx, fid) }

func TestList_StartsLoading(t *testing.T) {
	l := NewList(sourceFunc(nil), logger.Discard())

	entries, loading := l.Snapshot()
	assert.True(t, loading)
	assert.Empty(t, entries)
}

func TestList_LoadSuccess(t *testing.T) {
	want := []Entry{{FID: 1, Username: "alice", UnfollowedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	l := NewList(sourceFunc(func(ctx context.Context, fid int64) ([]Entry, error) {
		assert.EqualValues(t, 42, fid)
		return want, nil
	}), logger.Discard())

	l.Load(context.Background(), 42)

	entries, loading := l.Snapshot()
	assert.False(t, loading)
	assert.Equal(t, want, entries)
}

func TestList_LoadFailureDegradesToEmpty(t *testing.T) {
	calls := 0
	l := NewList(sourceFunc(func(ctx context.Context, fid int64) ([]Entry, error) {
		calls++
		if calls == 1 {
			return []Entry{{FID: 1, Username: "alice"}}, nil
		}
		return nil, errBoom
	}), logger.Discard())

	l.Load(context.Background(), 42)
	l.Load(context.Background(), 42)

	entries, loading := l.Snapshot()
	assert.False(t, loading)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestList_Reset(t *testing.T) {
	l := NewList(sourceFunc(func(ctx context.Context, fid int64) ([]Entry, error) {
		return []Entry{{FID: 1, Username: "alice"}}, nil
	}), logger.Discard())

	l.Load(context.Background(), 42)
	l.Reset()

	entries, _ := l.Snapshot()
	assert.Empty(t, entries)
}

func TestDisplay(t *testing.T) {
	row := Display(Entry{FID: 1, Username: "alice", UnfollowedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, "alice", row.Display)
	assert.Equal(t, "1/5/2024", row.UnfollowedOn)
	assert.Equal(t, "2024-01-05T00:00:00Z", row.UnfollowedAt)
}

func TestTruncateUsername(t *testing.T) {
	assert.Equal(t, "bob", TruncateUsername("bob"))

	long := "0x1234567890abcdef1234567890abcdef12345678"
	got := TruncateUsername(long)
	assert.Equal(t, long[:14]+"..."+long[len(long)-12:], got)
	assert.Len(t, got, 14+3+12)
}
