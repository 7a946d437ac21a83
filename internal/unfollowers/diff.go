package unfollowers

import "unfollowframe/internal/neynar"

// Diff returns the followers whose fid does not appear anywhere in
// following, in followers order. Duplicate followers are kept as given.
func Diff(followers, following []neynar.Follow) []neynar.Follow {
	followed := make(map[int64]struct{}, len(following))
	for _, f := range following {
		followed[f.FID] = struct{}{}
	}

	var out []neynar.Follow
	for _, f := range followers {
		if _, ok := followed[f.FID]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Truncate keeps the first n records. No ordering is applied first, so the
// result is "first n in API order", not "most recent n".
func Truncate(records []neynar.Follow, n int) []neynar.Follow {
	if len(records) <= n {
		return records
	}
	return records[:n]
}
