// Package frame drives the lifecycle of an embedded frame against its host:
// resolve the host context once, offer to add the frame, observe host
// events, and release every observer on unmount.
package frame

import "context"

type Event string

const (
	EventFrameAdded            Event = "frameAdded"
	EventFrameAddRejected      Event = "frameAddRejected"
	EventFrameRemoved          Event = "frameRemoved"
	EventNotificationsEnabled  Event = "notificationsEnabled"
	EventNotificationsDisabled Event = "notificationsDisabled"
	EventPrimaryButtonClicked  Event = "primaryButtonClicked"
)

// Events lists every event the controller observes.
var Events = []Event{
	EventFrameAdded,
	EventFrameAddRejected,
	EventFrameRemoved,
	EventNotificationsEnabled,
	EventNotificationsDisabled,
	EventPrimaryButtonClicked,
}

func (e Event) Valid() bool {
	for _, known := range Events {
		if e == known {
			return true
		}
	}
	return false
}

type NotificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// Payload carries the event-specific fields a host sends with an event.
type Payload struct {
	NotificationDetails *NotificationDetails `json:"notificationDetails,omitempty"`
	Reason              string               `json:"reason,omitempty"`
}

type Handler func(Payload)

// Subscription is a registered observer. Release is safe to call more
// than once.
type Subscription interface {
	Release()
}

type SafeAreaInsets struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

type User struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PfpURL      string `json:"pfpUrl,omitempty"`
}

type Client struct {
	ClientFID           int64                `json:"clientFid,omitempty"`
	Added               bool                 `json:"added"`
	SafeAreaInsets      *SafeAreaInsets      `json:"safeAreaInsets,omitempty"`
	NotificationDetails *NotificationDetails `json:"notificationDetails,omitempty"`
}

// Context is what the host tells the frame about the session.
type Context struct {
	User   User   `json:"user"`
	Client Client `json:"client"`
}

// Insets returns the safe-area insets, zero when the host sent none.
func (c *Context) Insets() SafeAreaInsets {
	if c == nil || c.Client.SafeAreaInsets == nil {
		return SafeAreaInsets{}
	}
	return *c.Client.SafeAreaInsets
}

type ReadyOptions struct {
	DisableNativeGestures bool `json:"disableNativeGestures,omitempty"`
}

// Host is the embedding client as seen by the frame.
//
// Context may return (nil, nil) when the host has no context to give.
type Host interface {
	Context(ctx context.Context) (*Context, error)
	AddFrame(ctx context.Context) error
	Ready(ctx context.Context, opts ReadyOptions) error
	Subscribe(event Event, h Handler) Subscription
}
