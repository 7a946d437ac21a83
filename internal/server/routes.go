package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(s.logger))
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.healthHandler)
	r.GET("/users/:fid/unfollowers", s.userUnfollowersHandler)

	sessions := r.Group("/sessions")
	{
		sessions.POST("", s.createSessionHandler)
		sessions.GET("/:id", s.getSessionHandler)
		sessions.DELETE("/:id", s.deleteSessionHandler)
		sessions.POST("/:id/events", s.postEventHandler)
		sessions.POST("/:id/actions/add-frame", s.addFrameAnswerHandler)
		sessions.POST("/:id/unfollowers/:fid/report", s.reportHandler)
	}

	return r
}

// corsConfig lets host clients embed the frame from the configured origins.
func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if len(s.deps.AllowedOrigins) == 0 || slices.Contains(s.deps.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = s.deps.AllowedOrigins
	cfg.AllowCredentials = true
	return cfg
}
