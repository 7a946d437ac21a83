package unfollowers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unfollowframe/internal/logger"
	"unfollowframe/internal/neynar"
)

func TestFetch_AliceScenario(t *testing.T) {
	g := &mockGraph{
		followers: []neynar.Follow{
			{FID: 1, UpdatedAt: "2024-01-01"},
			{FID: 2, UpdatedAt: "2024-02-01"},
		},
		following: []neynar.Follow{{FID: 2, UpdatedAt: "2024-02-01"}},
		usernames: map[int64]string{1: "alice"},
	}

	got, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	require.NoError(t, err)

	assert.Equal(t, []Entry{{
		FID:          1,
		Username:     "alice",
		UnfollowedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, got)
	assert.Equal(t, []int{FollowLimit, FollowLimit}, g.limits)
}

func TestFetch_IdenticalSets(t *testing.T) {
	g := &mockGraph{followers: follows(1, 2, 3, 4), following: follows(4, 3, 2, 1)}

	got, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, g.userCalls.Load())
}

func TestFetch_TruncatesBeforeEnrichment(t *testing.T) {
	var all []int64
	for i := int64(1); i <= 25; i++ {
		all = append(all, i)
	}
	g := &mockGraph{followers: follows(all...)}

	got, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	require.NoError(t, err)

	require.Len(t, got, MaxEntries)
	assert.EqualValues(t, MaxEntries, g.userCalls.Load())
	for i, e := range got {
		assert.EqualValues(t, i+1, e.FID, "order must follow the API response")
		assert.NotEmpty(t, e.Username)
		assert.False(t, e.UnfollowedAt.IsZero())
	}
}

func TestFetch_ListFailureAbortsEverything(t *testing.T) {
	for name, g := range map[string]*mockGraph{
		"followers": {followers: follows(1), followersErr: errBoom},
		"following": {followers: follows(1), followingErr: errBoom},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
			assert.ErrorIs(t, err, errBoom)
			assert.Nil(t, got)
			assert.Zero(t, g.userCalls.Load())
		})
	}
}

func TestFetch_SingleLookupFailureFailsAll(t *testing.T) {
	g := &mockGraph{
		followers: follows(1, 2, 3),
		userErr:   map[int64]error{2: errBoom},
	}

	got, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
}

func TestFetch_EmptyUsernameFails(t *testing.T) {
	g := &mockGraph{followers: follows(1), usernames: map[int64]string{1: " "}}

	_, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	assert.ErrorIs(t, err, ErrEmptyUsername)
}

func TestFetch_BadTimestampFails(t *testing.T) {
	g := &mockGraph{followers: []neynar.Follow{{FID: 1, UpdatedAt: "yesterday"}}}

	_, err := NewFetcher(g, logger.Discard()).Fetch(context.Background(), 99)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestFetch_InvalidFID(t *testing.T) {
	_, err := NewFetcher(&mockGraph{}, logger.Discard()).Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidFID)
}

func TestFetch_OverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/followers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fid":1,"updated_at":"2024-01-01T00:00:00.000Z"},{"fid":2,"updated_at":"2024-02-01T00:00:00.000Z"}]`))
	})
	mux.HandleFunc("/following", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fid":2,"updated_at":"2024-02-01T00:00:00.000Z"}]`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("fid"))
		w.Write([]byte(`{"result":{"user":{"username":"alice"}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := neynar.NewClient(srv.URL, "k")
	require.NoError(t, err)

	got, err := NewFetcher(client, logger.Discard()).Fetch(context.Background(), 99)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].UnfollowedAt)
}

func TestFetch_FollowingServerErrorOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/followers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fid":1,"updated_at":"2024-01-01"}]`))
	})
	mux.HandleFunc("/following", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := neynar.NewClient(srv.URL, "k")
	require.NoError(t, err)

	_, err = NewFetcher(client, logger.Discard()).Fetch(context.Background(), 99)
	var se *neynar.StatusError
	assert.ErrorAs(t, err, &se)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-01-01", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00.123Z", "2024-01-01T00:00:00"} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, got.Year())
	}

	_, err := ParseTimestamp("")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}
