// Package server exposes the decision core to the simulation host over
// HTTP. The host owns the clock and the cadence: it opens a session, posts
// one event batch per logical time advance, and reads the decision batch
// from the response.
package server

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/hpcsched/batling/internal/sched"
	"github.com/hpcsched/batling/internal/trace"
)

// Server handles HTTP requests from the simulation host.
type Server struct {
	// The core is single-threaded by design; the mutex serializes cycles
	// in case the host misbehaves and overlaps requests.
	mu        sync.Mutex
	scheduler *sched.Scheduler
	store     trace.Store
}

// NewServer creates a server around one scheduler instance and its trace
// store.
func NewServer(scheduler *sched.Scheduler, store trace.Store) *Server {
	return &Server{
		scheduler: scheduler,
		store:     store,
	}
}

// RegisterRoutes registers all API endpoints with the Echo router.
// Routes are grouped under /api/v1 for versioning.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	// Session lifecycle
	v1.POST("/session", s.CreateSession)
	v1.DELETE("/session", s.DeleteSession)

	// The scheduling entry point
	v1.POST("/decisions", s.TakeDecisions)

	// Run trace
	v1.GET("/trace/cycles", s.ListCycles)
	v1.GET("/trace/summary", s.TraceSummary)
}
