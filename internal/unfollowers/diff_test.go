package unfollowers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"unfollowframe/internal/neynar"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		followers []neynar.Follow
		following []neynar.Follow
		want      []int64
	}{
		{"empty", nil, nil, nil},
		{"no following", follows(1, 2, 3), nil, []int64{1, 2, 3}},
		{"identical sets", follows(1, 2, 3), follows(3, 2, 1), nil},
		{"partial overlap keeps order", follows(5, 4, 3, 2, 1), follows(4, 2), []int64{5, 3, 1}},
		{"following only", nil, follows(1, 2), nil},
		{"duplicate followers kept", follows(1, 1, 2), follows(2), []int64{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.followers, tt.following)
			assert.Equal(t, tt.want, fids(got))
		})
	}
}

// The diff must equal { f in F : f.fid not in fids(G) } for arbitrary inputs.
func TestDiff_MatchesSetDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		followers := randomFollows(rng, rng.Intn(120))
		following := randomFollows(rng, rng.Intn(120))

		got := Diff(followers, following)

		var want []int64
		for _, f := range followers {
			found := false
			for _, g := range following {
				if g.FID == f.FID {
					found = true
					break
				}
			}
			if !found {
				want = append(want, f.FID)
			}
		}
		assert.Equal(t, want, fids(got))

		truncated := Truncate(got, MaxEntries)
		assert.LessOrEqual(t, len(truncated), MaxEntries)
		assert.Equal(t, min(MaxEntries, len(got)), len(truncated))
	}
}

func TestTruncate(t *testing.T) {
	assert.Len(t, Truncate(follows(1, 2, 3), 10), 3)
	assert.Equal(t, []int64{1, 2}, fids(Truncate(follows(1, 2, 3), 2)))
	assert.Empty(t, Truncate(nil, 10))
}

func randomFollows(rng *rand.Rand, n int) []neynar.Follow {
	out := make([]neynar.Follow, n)
	for i := range out {
		out[i] = neynar.Follow{FID: int64(rng.Intn(200) + 1)}
	}
	return out
}

func fids(records []neynar.Follow) []int64 {
	var out []int64
	for _, r := range records {
		out = append(out, r.FID)
	}
	return out
}
