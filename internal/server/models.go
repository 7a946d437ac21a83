package server

import (
	"time"

	"unfollowframe/internal/frame"
	"unfollowframe/internal/unfollowers"
)

type CreateSessionRequest struct {
	Context *frame.Context `json:"context"`
}

type EventRequest struct {
	Event               frame.Event                `json:"event" binding:"required"`
	NotificationDetails *frame.NotificationDetails `json:"notificationDetails,omitempty"`
	Reason              string                     `json:"reason,omitempty"`
}

// SessionView is the rendered frame: status, layout insets and the list.
type SessionView struct {
	SessionID      string               `json:"session_id"`
	Live           bool                 `json:"live"`
	HostReady      bool                 `json:"host_ready"`
	Observers      int                  `json:"observers"`
	Status         *frame.Status        `json:"status,omitempty"`
	SafeArea       frame.SafeAreaInsets `json:"safe_area"`
	Loading        bool                 `json:"loading"`
	Unfollowers    []unfollowers.Row    `json:"unfollowers"`
	PendingActions []string             `json:"pending_actions"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

type UnfollowersResponse struct {
	FID         int64             `json:"fid"`
	Loading     bool              `json:"loading"`
	Unfollowers []unfollowers.Row `json:"unfollowers"`
}

type ReportResponse struct {
	ReportID  string `json:"report_id"`
	TargetFID int64  `json:"target_fid"`
}
