package session

import (
	"time"

	"unfollowframe/internal/frame"
)

// Session is the stored record of one mounted frame.
type Session struct {
	ID        string         `json:"id"`
	FID       int64          `json:"fid"`
	Context   *frame.Context `json:"context"`
	Status    *frame.Status  `json:"status,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
