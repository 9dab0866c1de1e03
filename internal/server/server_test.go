package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hpcsched/batling/internal/sched"
	"github.com/hpcsched/batling/internal/trace"
)

func newTestServer() (*echo.Echo, *Server) {
	e := echo.New()
	scheduler := sched.New(sched.StrategyConservative, sched.PlacementLowestID)
	srv := NewServer(scheduler, trace.NewInMemoryStore())
	srv.RegisterRoutes(e)
	return e, srv
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/session", `{"flags": 2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != sched.Name || resp.Encoding != "application/json" {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateSessionRejectsUnknownFlags(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/session", `{"flags": 64}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}

	// No session was created, so decision cycles must be refused.
	rec = doJSON(e, http.MethodPost, "/api/v1/decisions", `{"now": 0, "events": []}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("decisions without session: status = %d, want 409", rec.Code)
	}
}

func TestDecisionCycle(t *testing.T) {
	e, _ := newTestServer()

	if rec := doJSON(e, http.MethodPost, "/api/v1/session", `{"flags": 2}`); rec.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", rec.Code, rec.Body)
	}

	batch := `{
		"now": 0,
		"events": [
			{"kind": "hello"},
			{"kind": "simulation_begins", "simulationBegins": {"hostCount": 4}},
			{"kind": "job_submitted", "jobSubmitted": {"jobId": "j1", "resources": 2, "walltime": 5}}
		]
	}`
	rec := doJSON(e, http.MethodPost, "/api/v1/decisions", batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("decisions: status = %d: %s", rec.Code, rec.Body)
	}

	var out struct {
		Now       float64 `json:"now"`
		Decisions []struct {
			Kind       string `json:"kind"`
			ExecuteJob *struct {
				JobID     string `json:"jobId"`
				Resources string `json:"resources"`
			} `json:"executeJob"`
		} `json:"decisions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode decisions: %v", err)
	}
	if len(out.Decisions) != 2 || out.Decisions[0].Kind != "hello" {
		t.Fatalf("decisions = %+v", out.Decisions)
	}
	if out.Decisions[1].ExecuteJob == nil || out.Decisions[1].ExecuteJob.Resources != "0-1" {
		t.Errorf("execute decision = %+v", out.Decisions[1])
	}

	// The cycle must be visible in the trace.
	rec = doJSON(e, http.MethodGet, "/api/v1/trace/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status = %d", rec.Code)
	}
	var summary TraceSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Cycles != 1 || summary.Starts != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	e, _ := newTestServer()

	doJSON(e, http.MethodPost, "/api/v1/session", `{"flags": 2}`)

	for i := 0; i < 2; i++ {
		rec := doJSON(e, http.MethodDelete, "/api/v1/session", "")
		if rec.Code != http.StatusNoContent {
			t.Errorf("delete %d: status = %d, want 204", i, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/decisions", `{"now": 0, "events": []}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("decisions after shutdown: status = %d, want 409", rec.Code)
	}
}
