// Package server exposes the frame over HTTP: sessions mount a frame
// controller against an in-process host bus, and the unfollower list is
// served as the rendered view.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"unfollowframe/internal/config"
	"unfollowframe/internal/frame"
	"unfollowframe/internal/host"
	"unfollowframe/internal/report"
	"unfollowframe/internal/session"
	"unfollowframe/internal/unfollowers"
)

var errServerClosed = errors.New("server shutting down")

// HealthCheck reports a dependency's health; nil means up.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators a Server needs. Guard may be nil.
type Deps struct {
	Source         unfollowers.Source
	Sessions       session.Manager
	Guard          frame.Guard
	Reporter       report.Reporter
	Logger         *slog.Logger
	ServiceName    string
	SessionMaxAge  time.Duration
	SweepInterval  time.Duration
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck
}

// mount is one live frame session in this process.
type mount struct {
	bus        *host.Bus
	list       *unfollowers.List
	controller *frame.Controller

	mu     sync.Mutex
	record *session.Session
	closed bool
}

func (m *mount) expired(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record.Expired(now)
}

// close stops status write-back. Handlers already running may still fire
// after this; their updates are dropped.
func (m *mount) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

type Server struct {
	deps   Deps
	logger *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	mounts map[string]*mount
	closed bool
}

// New builds the server and starts the expired-session sweep. Call
// Shutdown to stop it.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SessionMaxAge <= 0 {
		deps.SessionMaxAge = 24 * time.Hour
	}
	if deps.SweepInterval <= 0 {
		deps.SweepInterval = time.Minute
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "unfollower-frame"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		deps:    deps,
		logger:  deps.Logger,
		baseCtx: ctx,
		cancel:  cancel,
		mounts:  make(map[string]*mount),
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

// NewHTTPServer wraps handler with the configured timeouts.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Shutdown unmounts every live frame and stops the sweep. Later requests
// are served from stored records only.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closed = true
	mounts := s.mounts
	s.mounts = make(map[string]*mount)
	s.mu.Unlock()

	for id, m := range mounts {
		m.close()
		m.controller.Unmount()
		s.logger.Debug("Unmounted frame on shutdown", "session_id", id)
	}
	s.cancel()
	s.wg.Wait()
}

// lookup returns the live mount for id. A mount past its session expiry is
// unmounted on the way.
func (s *Server) lookup(id string) (*mount, bool) {
	s.mu.RLock()
	m, ok := s.mounts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.expired(time.Now()) {
		s.unmount(id, m)
		s.logger.Info("Frame session expired", "session_id", id)
		return nil, false
	}
	return m, true
}

func (s *Server) detach(id string) (*mount, bool) {
	s.mu.Lock()
	m, ok := s.mounts[id]
	if ok {
		delete(s.mounts, id)
	}
	s.mu.Unlock()

	if ok {
		m.close()
	}
	return m, ok
}

// unmount removes m if it is still the mount registered for id, then tears
// it down.
func (s *Server) unmount(id string, m *mount) {
	s.mu.Lock()
	if cur, ok := s.mounts[id]; ok && cur == m {
		delete(s.mounts, id)
	}
	s.mu.Unlock()

	m.close()
	m.controller.Unmount()
}

func (s *Server) liveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mounts)
}

// mountFrame creates the host bus and controller for a session record and
// runs the one-shot load. A record already mounted here returns the
// existing mount. Records coming from another replica mount with their
// stored status, and the add-frame guard keeps the prompt from showing
// twice.
func (s *Server) mountFrame(rec *session.Session) (*mount, error) {
	l := s.logger.With("session_id", rec.ID)

	m := &mount{
		bus:    host.NewBus(),
		list:   unfollowers.NewList(s.deps.Source, l),
		record: rec,
	}
	m.bus.Resolve(restoredContext(rec))

	opts := []frame.Option{
		frame.WithLogger(l),
		frame.WithLoader(m.list, rec.FID),
		frame.WithStatusHook(s.persistStatus(m)),
	}
	if s.deps.Guard != nil {
		opts = append(opts, frame.WithAddGuard(s.deps.Guard, rec.ID))
	}
	m.controller = frame.NewController(m.bus, frame.NewLifecycle(), opts...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errServerClosed
	}
	if cur, ok := s.mounts[rec.ID]; ok {
		s.mu.Unlock()
		return cur, nil
	}
	s.mounts[rec.ID] = m
	s.mu.Unlock()

	if err := m.controller.Mount(s.baseCtx); err != nil {
		l.Warn("Frame load ended without context", "error", err)
	}
	return m, nil
}

// restoredContext folds a stored status back into the host context, so a
// frame added through one replica is not treated as unadded on another.
func restoredContext(rec *session.Session) *frame.Context {
	if rec.Context == nil || rec.Status == nil {
		return rec.Context
	}

	hc := *rec.Context
	hc.Client.Added = rec.Status.Added
	hc.Client.NotificationDetails = rec.Status.NotificationDetails
	return &hc
}

// persistStatus stores every status change on the session record so other
// replicas can answer reads and remount.
func (s *Server) persistStatus(m *mount) func(frame.Status) {
	return func(st frame.Status) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			return
		}
		if st.AddFrameResult == "" && m.record.Status != nil {
			st.AddFrameResult = m.record.Status.AddFrameResult
		}

		m.record.Status = &st
		ctx, cancel := context.WithTimeout(s.baseCtx, 2*time.Second)
		defer cancel()

		if err := s.deps.Sessions.Update(ctx, m.record); err != nil {
			s.logger.Warn("Failed to persist frame status",
				"session_id", m.record.ID,
				"error", err)
		}
	}
}

func (s *Server) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.deps.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-ticker.C:
			s.sweep(s.baseCtx)
		}
	}
}

// sweep unmounts frames whose session expired or was deleted, possibly by
// another replica. It returns how many were unmounted.
func (s *Server) sweep(ctx context.Context) int {
	s.mu.RLock()
	mounts := make(map[string]*mount, len(s.mounts))
	for id, m := range s.mounts {
		mounts[id] = m
	}
	s.mu.RUnlock()

	now := time.Now()
	n := 0
	for id, m := range mounts {
		if !m.expired(now) {
			ok, err := s.deps.Sessions.Validate(ctx, id)
			if err != nil {
				s.logger.Warn("Failed to validate session", "session_id", id, "error", err)
				continue
			}
			if ok {
				continue
			}
		}
		s.unmount(id, m)
		n++
	}

	if n > 0 {
		s.logger.Info("Swept stale frame sessions", "count", n)
	}
	return n
}
