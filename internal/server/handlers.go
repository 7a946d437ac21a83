package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"unfollowframe/internal/frame"
	"unfollowframe/internal/host"
	"unfollowframe/internal/report"
	"unfollowframe/internal/session"
	"unfollowframe/internal/unfollowers"
)

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.HealthChecks))
	healthy := true
	for name, check := range s.deps.HealthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	live := s.liveCount()

	body := gin.H{
		"status":        "healthy",
		"service":       s.deps.ServiceName,
		"live_sessions": live,
		"checks":        checks,
	}
	if !healthy {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// userUnfollowersHandler renders the list for fid without a session. Fetch
// failures degrade to an empty list, same as the mounted view.
func (s *Server) userUnfollowersHandler(c *gin.Context) {
	fid, ok := parseFID(c, "fid")
	if !ok {
		return
	}

	list := unfollowers.NewList(s.deps.Source, s.logger)
	list.Load(c.Request.Context(), fid)
	entries, loading := list.Snapshot()

	c.JSON(http.StatusOK, UnfollowersResponse{
		FID:         fid,
		Loading:     loading,
		Unfollowers: unfollowers.DisplayAll(entries),
	})
}

func (s *Server) createSessionHandler(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rec, err := s.deps.Sessions.Create(c.Request.Context(), req.Context, s.deps.SessionMaxAge)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	m, err := s.mountFrame(rec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	st := m.controller.Status()

	s.logger.Info("Frame mounted",
		"session_id", rec.ID,
		"fid", rec.FID,
		"state", st.State.String())

	c.JSON(http.StatusCreated, gin.H{
		"session_id": rec.ID,
		"status":     st,
	})
}

func (s *Server) getSessionHandler(c *gin.Context) {
	id := c.Param("id")

	if m, ok := s.lookup(id); ok {
		c.JSON(http.StatusOK, s.liveView(id, m))
		return
	}

	rec, ok := s.storedSession(c, id)
	if !ok {
		return
	}

	// Mounted on another replica, or before a restart: mount it here.
	m, err := s.mountFrame(rec)
	if err != nil {
		c.JSON(http.StatusOK, storedView(rec))
		return
	}
	c.JSON(http.StatusOK, s.liveView(id, m))
}

func storedView(rec *session.Session) SessionView {
	view := SessionView{
		SessionID:      rec.ID,
		Status:         rec.Status,
		Unfollowers:    []unfollowers.Row{},
		PendingActions: []string{},
		ExpiresAt:      rec.ExpiresAt,
	}
	if rec.Context != nil {
		view.SafeArea = rec.Context.Insets()
	}
	return view
}

func (s *Server) liveView(id string, m *mount) SessionView {
	st := m.controller.Status()
	entries, loading := m.list.Snapshot()

	m.mu.Lock()
	expires := m.record.ExpiresAt
	m.mu.Unlock()

	return SessionView{
		SessionID:      id,
		Live:           true,
		HostReady:      m.bus.IsReady(),
		Observers:      m.bus.Listeners(),
		Status:         &st,
		SafeArea:       st.Context.Insets(),
		Loading:        loading,
		Unfollowers:    unfollowers.DisplayAll(entries),
		PendingActions: m.bus.PendingActions(),
		ExpiresAt:      expires,
	}
}

func (s *Server) deleteSessionHandler(c *gin.Context) {
	id := c.Param("id")

	m, live := s.detach(id)
	if live {
		m.controller.Unmount()
	}

	if !live {
		if _, ok := s.storedSession(c, id); !ok {
			return
		}
	}

	if err := s.deps.Sessions.Delete(c.Request.Context(), id); err != nil {
		s.logger.Error("Failed to delete session", "session_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}

	s.logger.Info("Frame unmounted", "session_id", id)
	c.Status(http.StatusNoContent)
}

func (s *Server) postEventHandler(c *gin.Context) {
	m, ok := s.liveMount(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if !req.Event.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event: " + string(req.Event)})
		return
	}

	delivered := m.bus.Emit(req.Event, frame.Payload{
		NotificationDetails: req.NotificationDetails,
		Reason:              req.Reason,
	})

	c.JSON(http.StatusAccepted, gin.H{
		"event":     req.Event,
		"delivered": delivered,
	})
}

func (s *Server) addFrameAnswerHandler(c *gin.Context) {
	m, ok := s.liveMount(c)
	if !ok {
		return
	}

	var answer host.Answer
	if err := c.ShouldBindJSON(&answer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	err := m.bus.Respond(answer)
	switch {
	case errors.Is(err, host.ErrUnknownOutcome):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, host.ErrNoPendingAction):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"result": answer.Outcome})
}

func (s *Server) reportHandler(c *gin.Context) {
	id := c.Param("id")

	rec, ok := s.storedSession(c, id)
	if !ok {
		return
	}
	target, ok := parseFID(c, "fid")
	if !ok {
		return
	}

	r := report.New(rec.ID, rec.FID, target)
	if err := r.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Reporter.Report(c.Request.Context(), r); err != nil {
		s.logger.Error("Failed to record report",
			"session_id", id,
			"target_fid", target,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record report"})
		return
	}

	c.JSON(http.StatusAccepted, ReportResponse{
		ReportID:  r.ID.String(),
		TargetFID: target,
	})
}

// liveMount resolves :id to a frame mounted in this process, mounting a
// stored session when needed. It writes the error response on failure.
func (s *Server) liveMount(c *gin.Context) (*mount, bool) {
	id := c.Param("id")
	if m, ok := s.lookup(id); ok {
		return m, true
	}

	rec, ok := s.storedSession(c, id)
	if !ok {
		return nil, false
	}
	m, err := s.mountFrame(rec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return m, true
}

func (s *Server) storedSession(c *gin.Context, id string) (*session.Session, bool) {
	rec, err := s.deps.Sessions.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	case err != nil:
		s.logger.Error("Failed to load session", "session_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return nil, false
	}
	return rec, true
}

func parseFID(c *gin.Context, param string) (int64, bool) {
	fid, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || fid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fid"})
		return 0, false
	}
	return fid, true
}
