package server

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hpcsched/batling/internal/sched"
	"github.com/hpcsched/batling/internal/trace"
)

// CreateSessionRequest asks for a new scheduling session with the given
// configuration flags.
type CreateSessionRequest struct {
	Flags uint32 `json:"flags"`
}

// CreateSessionResponse identifies the scheduler and the negotiated batch
// encoding.
type CreateSessionResponse struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Encoding string `json:"encoding"`
}

// TraceSummaryResponse merges the trace aggregate with the engine's
// backfill counters.
type TraceSummaryResponse struct {
	trace.Summary
	sched.Stats
}

// CreateSession handles POST /api/v1/session. Unrecognized flags fail the
// initialization and leave no session behind.
func (s *Server) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scheduler.Initialize(req.Flags); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		Name:     sched.Name,
		Version:  sched.Version,
		Encoding: s.scheduler.Codec().ContentType(),
	})
}

// DeleteSession handles DELETE /api/v1/session. Idempotent.
func (s *Server) DeleteSession(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Shutdown()
	return c.NoContent(http.StatusNoContent)
}

// TakeDecisions handles POST /api/v1/decisions: one event batch in, one
// decision batch out, both in the encoding negotiated at session creation.
func (s *Server) TakeDecisions(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scheduler.Initialized() {
		return c.JSON(http.StatusConflict, map[string]string{"error": "no active session"})
	}

	enc := s.scheduler.Codec()
	batch, err := enc.DecodeEvents(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	out, err := s.scheduler.TakeDecisions(batch)
	if err != nil {
		// Invariant breaches land here; the reservation model may be
		// corrupt and the host must decide what to do with the run.
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if err := s.store.RecordCycle(trace.NewCycleRecord(out)); err != nil {
		log.Printf("failed to record cycle at t=%v: %v", out.Now, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, enc.ContentType())
	c.Response().WriteHeader(http.StatusOK)
	return enc.EncodeDecisions(c.Response(), out)
}

// ListCycles handles GET /api/v1/trace/cycles.
func (s *Server) ListCycles(c echo.Context) error {
	cycles, err := s.store.ListCycles()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cycles)
}

// TraceSummary handles GET /api/v1/trace/summary.
func (s *Server) TraceSummary(c echo.Context) error {
	summary, err := s.store.Summary()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, TraceSummaryResponse{
		Summary: summary,
		Stats:   s.scheduler.Stats(),
	})
}
