// Package host implements frame.Host in process. The HTTP layer feeds it
// with what the embedding client reports (context, events, add-frame
// answers) and the frame controller consumes it like any other host.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"unfollowframe/internal/frame"
)

var (
	ErrNoPendingAction = errors.New("no pending add-frame request")
	ErrUnknownOutcome  = errors.New("unknown add-frame outcome")
)

// Outcome is the client's answer to an add-frame request.
type Outcome string

const (
	OutcomeAdded                 Outcome = "added"
	OutcomeRejected              Outcome = "rejected"
	OutcomeInvalidDomainManifest Outcome = "invalid_domain_manifest"
	OutcomeError                 Outcome = "error"
)

// Answer carries the client's reply to an add-frame request.
type Answer struct {
	Outcome             Outcome                    `json:"result"`
	Reason              string                     `json:"reason,omitempty"`
	NotificationDetails *frame.NotificationDetails `json:"notificationDetails,omitempty"`
}

func (a Answer) err() error {
	switch a.Outcome {
	case OutcomeAdded:
		return nil
	case OutcomeRejected:
		return withReason(frame.ErrRejectedByUser, a.Reason)
	case OutcomeInvalidDomainManifest:
		return withReason(frame.ErrInvalidDomainManifest, a.Reason)
	default:
		if a.Reason != "" {
			return errors.New(a.Reason)
		}
		return errors.New("add frame failed")
	}
}

func withReason(base error, reason string) error {
	if reason == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, reason)
}

type subscription struct {
	bus   *Bus
	event frame.Event
	id    uint64
	once  sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.event], s.id)
		s.bus.mu.Unlock()
	})
}

// Bus is an in-process frame.Host.
type Bus struct {
	resolved    chan struct{}
	resolveOnce sync.Once
	hostCtx     *frame.Context

	mu        sync.Mutex
	subs      map[frame.Event]map[uint64]frame.Handler
	nextID    uint64
	pending   chan Answer
	ready     bool
	readyOpts frame.ReadyOptions
}

func NewBus() *Bus {
	return &Bus{
		resolved: make(chan struct{}),
		subs:     make(map[frame.Event]map[uint64]frame.Handler),
	}
}

// Resolve publishes the host context. Later calls are ignored. A nil
// context resolves to "no context".
func (b *Bus) Resolve(hc *frame.Context) {
	b.resolveOnce.Do(func() {
		b.hostCtx = hc
		close(b.resolved)
	})
}

func (b *Bus) Context(ctx context.Context) (*frame.Context, error) {
	select {
	case <-b.resolved:
		return b.hostCtx, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AddFrame parks until the client answers through Respond or ctx ends.
// Only one request may be pending at a time.
func (b *Bus) AddFrame(ctx context.Context) error {
	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return errors.New("add frame already in progress")
	}
	reply := make(chan Answer, 1)
	b.pending = reply
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.pending == reply {
			b.pending = nil
		}
		b.mu.Unlock()
	}()

	select {
	case a := <-reply:
		if a.Outcome == OutcomeAdded {
			b.Emit(frame.EventFrameAdded, frame.Payload{NotificationDetails: a.NotificationDetails})
		}
		return a.err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Respond delivers the client's answer to the pending add-frame request.
func (b *Bus) Respond(a Answer) error {
	switch a.Outcome {
	case OutcomeAdded, OutcomeRejected, OutcomeInvalidDomainManifest, OutcomeError:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, a.Outcome)
	}

	b.mu.Lock()
	reply := b.pending
	b.pending = nil
	b.mu.Unlock()

	if reply == nil {
		return ErrNoPendingAction
	}
	reply <- a
	return nil
}

// PendingActions lists host actions waiting on the client.
func (b *Bus) PendingActions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil {
		return []string{"addFrame"}
	}
	return []string{}
}

func (b *Bus) Ready(ctx context.Context, opts frame.ReadyOptions) error {
	b.mu.Lock()
	b.ready = true
	b.readyOpts = opts
	b.mu.Unlock()
	return nil
}

func (b *Bus) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *Bus) Subscribe(event frame.Event, h frame.Handler) frame.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subs[event] == nil {
		b.subs[event] = make(map[uint64]frame.Handler)
	}
	b.subs[event][b.nextID] = h

	return &subscription{bus: b, event: event, id: b.nextID}
}

// Emit calls every current observer of event and returns how many ran.
// Handlers run outside the bus lock.
func (b *Bus) Emit(event frame.Event, p frame.Payload) int {
	b.mu.Lock()
	handlers := make([]frame.Handler, 0, len(b.subs[event]))
	for _, h := range b.subs[event] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(p)
	}
	return len(handlers)
}

// Listeners counts live subscriptions across all events.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, hs := range b.subs {
		n += len(hs)
	}
	return n
}
