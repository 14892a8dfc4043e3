// Package server exposes the control-plane HTTP API: the do-not-disturb
// flag, calibration management, status and metrics.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/desksentry/internal/dnd"
	"github.com/ayusman/desksentry/internal/kinematics"
	"github.com/ayusman/desksentry/internal/store"
	"github.com/ayusman/desksentry/internal/trigger"
)

// StateReader reports the trigger machine's externally visible state. The
// orchestrator owns stepping; the server only reads.
type StateReader interface {
	State() trigger.State
	CooldownRemaining(now time.Time) time.Duration
}

// Config holds the server's collaborators. Nil fields disable their
// endpoints.
type Config struct {
	Flag    *dnd.Cell
	Store   *store.Store
	Mapper  *kinematics.Mapper
	Machine StateReader
}

// Server is the control-plane HTTP server.
type Server struct {
	config Config
	engine *gin.Engine
	start  time.Time
}

// New creates a Server and registers its routes.
func New(config Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		config: config,
		engine: engine,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		if s.config.Flag != nil {
			api.GET("/dnd", s.handleGetDND)
			api.POST("/dnd", s.handleSetDND)
		}
		if s.config.Machine != nil {
			api.GET("/status", s.handleStatus)
		}
		if s.config.Mapper != nil {
			api.GET("/calibration", s.handleGetCalibration)
			api.PUT("/calibration", s.handlePutCalibration)
			api.PUT("/calibration/:position", s.handlePutCorner)
		}
	}

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe starts the server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return s.engine.Run(addr)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}
