package unfollowers

import "time"

const (
	displayHead = 14
	displayTail = 12
)

// Row is the rendered form of an Entry.
type Row struct {
	FID          int64  `json:"fid"`
	Username     string `json:"username"`
	Display      string `json:"display_name"`
	UnfollowedOn string `json:"unfollowed_on"`
	UnfollowedAt string `json:"unfollowed_at"`
}

// TruncateUsername shortens long handles (e.g. address-like names) to
// head...tail. Short names are returned unchanged.
func TruncateUsername(s string) string {
	r := []rune(s)
	if len(r) <= displayHead+displayTail+3 {
		return s
	}
	return string(r[:displayHead]) + "..." + string(r[len(r)-displayTail:])
}

// LocalDate formats t as M/D/YYYY in UTC.
func LocalDate(t time.Time) string {
	return t.UTC().Format("1/2/2006")
}

func Display(e Entry) Row {
	return Row{
		FID:          e.FID,
		Username:     e.Username,
		Display:      TruncateUsername(e.Username),
		UnfollowedOn: LocalDate(e.UnfollowedAt),
		UnfollowedAt: e.UnfollowedAt.UTC().Format(time.RFC3339),
	}
}

func DisplayAll(entries []Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Display(e))
	}
	return rows
}
