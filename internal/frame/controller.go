package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrUnmounted = errors.New("frame unmounted")

// Loader fetches data for a known user while the host context resolves.
type Loader interface {
	Load(ctx context.Context, fid int64)
}

// Guard hands out one-shot keys, typically backed by a shared store so the
// add-frame prompt is offered once per session across processes.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// Status is a point-in-time view of the controller.
type Status struct {
	State               State                `json:"state"`
	Added               bool                 `json:"added"`
	AddFrameResult      string               `json:"add_frame_result,omitempty"`
	Context             *Context             `json:"context,omitempty"`
	NotificationDetails *NotificationDetails `json:"notification_details,omitempty"`
}

type Option func(*Controller)

// WithLoader makes Mount load data for fid alongside the context request.
// fid is the identity already known from an earlier render; zero disables
// the load.
func WithLoader(l Loader, fid int64) Option {
	return func(c *Controller) {
		c.loader = l
		c.knownFID = fid
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithAddGuard(g Guard, key string) Option {
	return func(c *Controller) {
		c.guard = g
		c.guardKey = key
	}
}

// WithStatusHook is called after every state change, outside the
// controller's lock.
func WithStatusHook(fn func(Status)) Option {
	return func(c *Controller) { c.hook = fn }
}

func WithReadyOptions(opts ReadyOptions) Option {
	return func(c *Controller) { c.readyOpts = opts }
}

// Controller runs one mount of a frame against a Host.
type Controller struct {
	host      Host
	lifecycle *Lifecycle
	loader    Loader
	knownFID  int64
	guard     Guard
	guardKey  string
	readyOpts ReadyOptions
	hook      func(Status)
	logger    *slog.Logger

	mu            sync.Mutex
	hostCtx       *Context
	added         bool
	addResult     string
	notifications *NotificationDetails
	subs          []Subscription
	closed        bool
	cancel        context.CancelFunc

	addOnce     sync.Once
	unmountOnce sync.Once
	wg          sync.WaitGroup
}

func NewController(host Host, lifecycle *Lifecycle, opts ...Option) *Controller {
	if lifecycle == nil {
		lifecycle = NewLifecycle()
	}
	c := &Controller{
		host:      host,
		lifecycle: lifecycle,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount loads the frame once. ctx bounds the whole mounted lifetime, not
// just this call: background work started here is canceled by Unmount or
// when ctx ends.
//
// A host that returns no context leaves the controller Ready and inert. A
// context error also ends in Ready and is returned; callers should treat
// both as final for this mount.
func (c *Controller) Mount(ctx context.Context) error {
	if !c.lifecycle.Begin() {
		return ErrAlreadyMounted
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.lifecycle.finish()
		return ErrUnmounted
	}
	lifeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	if c.loader != nil && c.knownFID > 0 {
		fid := c.knownFID
		c.spawn(func() { c.loader.Load(lifeCtx, fid) })
	}

	hc, err := c.host.Context(lifeCtx)
	c.lifecycle.finish()
	if err != nil {
		c.logger.Warn("Failed to resolve host context", "error", err)
		c.notify()
		return fmt.Errorf("resolve host context: %w", err)
	}
	if hc == nil {
		c.logger.Info("Host returned no context, frame stays inert")
		c.notify()
		return nil
	}

	c.mu.Lock()
	c.hostCtx = hc
	c.added = hc.Client.Added
	c.notifications = hc.Client.NotificationDetails
	c.mu.Unlock()

	if !hc.Client.Added {
		c.promptAdd(lifeCtx)
	}

	c.observe()

	c.logger.Debug("Calling ready", "fid", hc.User.FID)
	if err := c.host.Ready(lifeCtx, c.readyOpts); err != nil {
		c.logger.Warn("Host ready failed", "error", err)
	}

	c.notify()
	return nil
}

// Unmount releases every observer, cancels background work and waits for
// it. Safe to call more than once, and before Mount.
func (c *Controller) Unmount() {
	c.unmountOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		subs := c.subs
		c.subs = nil
		cancel := c.cancel
		c.mu.Unlock()

		for _, s := range subs {
			s.Release()
		}
		if cancel != nil {
			cancel()
		}
		c.wg.Wait()

		if r, ok := c.loader.(interface{ Reset() }); ok {
			r.Reset()
		}

		c.logger.Debug("Frame unmounted", "released", len(subs))
	})
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:               c.lifecycle.State(),
		Added:               c.added,
		AddFrameResult:      c.addResult,
		Context:             c.hostCtx,
		NotificationDetails: c.notifications,
	}
}

func (c *Controller) Lifecycle() *Lifecycle {
	return c.lifecycle
}

// spawn runs fn tracked by the wait group unless the controller is closed.
func (c *Controller) spawn(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
	return true
}

func (c *Controller) promptAdd(ctx context.Context) {
	c.addOnce.Do(func() {
		c.spawn(func() {
			if c.guard != nil {
				ok, err := c.guard.Acquire(ctx, c.guardKey)
				switch {
				case err != nil:
					c.logger.Warn("Add-frame guard unavailable, falling back to local once", "error", err)
				case !ok:
					c.logger.Debug("Add-frame already offered for this session", "key", c.guardKey)
					return
				}
			}

			err := c.host.AddFrame(ctx)
			if err == nil {
				return
			}
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return
			}

			status := AddFrameStatus(err)
			c.mu.Lock()
			c.addResult = status
			c.mu.Unlock()

			c.logger.Info("Add frame failed",
				"outcome", ClassifyAddFrameError(err).String(),
				"error", err)
			c.notify()
		})
	})
}

func (c *Controller) observe() {
	handlers := map[Event]Handler{
		EventFrameAdded: func(p Payload) {
			c.mu.Lock()
			c.added = true
			if p.NotificationDetails != nil {
				c.notifications = p.NotificationDetails
			}
			c.mu.Unlock()
			c.logger.Info("frameAdded")
			c.notify()
		},
		EventFrameAddRejected: func(p Payload) {
			c.logger.Info("frameAddRejected", "reason", p.Reason)
		},
		EventFrameRemoved: func(Payload) {
			c.mu.Lock()
			c.added = false
			c.notifications = nil
			c.mu.Unlock()
			c.logger.Info("frameRemoved")
			c.notify()
		},
		EventNotificationsEnabled: func(p Payload) {
			c.mu.Lock()
			c.notifications = p.NotificationDetails
			c.mu.Unlock()
			c.logger.Info("notificationsEnabled", "details", p.NotificationDetails != nil)
			c.notify()
		},
		EventNotificationsDisabled: func(Payload) {
			c.mu.Lock()
			c.notifications = nil
			c.mu.Unlock()
			c.logger.Info("notificationsDisabled")
			c.notify()
		},
		EventPrimaryButtonClicked: func(Payload) {
			c.logger.Info("primaryButtonClicked")
		},
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	for _, ev := range Events {
		c.subs = append(c.subs, c.host.Subscribe(ev, handlers[ev]))
	}
}

func (c *Controller) notify() {
	if c.hook != nil {
		c.hook(c.Status())
	}
}
