package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hpcsched/batling/internal/trace"
)

func TestClient_GetTraceSummary(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		response   interface{}
		wantErr    bool
		wantCycles int
	}{
		{
			name:       "successful summary fetch",
			statusCode: http.StatusOK,
			response: TraceSummary{
				Summary: trace.Summary{
					Cycles:   4,
					Starts:   3,
					Rejects:  1,
					Makespan: 12.0,
				},
				Backfills: 2,
			},
			wantErr:    false,
			wantCycles: 4,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			response:   map[string]string{"error": "internal server error"},
			wantErr:    true,
		},
		{
			name:       "garbage body",
			statusCode: http.StatusOK,
			response:   "not json at all",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				server := httptest.NewServer(
					http.HandlerFunc(
						func(w http.ResponseWriter, r *http.Request) {
							if r.URL.Path != "/api/v1/trace/summary" {
								t.Errorf("unexpected path: %s", r.URL.Path)
							}
							if r.Method != http.MethodGet {
								t.Errorf("unexpected method: %s", r.Method)
							}

							w.WriteHeader(tt.statusCode)
							if s, ok := tt.response.(string); ok {
								_, _ = w.Write([]byte(s))
								return
							}
							_ = json.NewEncoder(w).Encode(tt.response)
						},
					),
				)
				defer server.Close()

				client := NewClient(server.URL)
				summary, err := client.GetTraceSummary()

				if (err != nil) != tt.wantErr {
					t.Errorf("GetTraceSummary() error = %v, wantErr %v", err, tt.wantErr)
					return
				}
				if tt.wantErr {
					return
				}

				if summary.Cycles != tt.wantCycles {
					t.Errorf("Cycles = %d, want %d", summary.Cycles, tt.wantCycles)
				}
			},
		)
	}
}

func TestClient_ListCycles(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/trace/cycles" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}

				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(
					[]trace.CycleRecord{
						{
							CycleID: "cycle-1",
							SimTime: 0,
							Decisions: []trace.DecisionRecord{
								{Kind: "execute_job", JobID: "w0!1", Resources: "0-3"},
							},
							RecordedAt: time.Now(),
						},
						{
							CycleID:    "cycle-2",
							SimTime:    5,
							RecordedAt: time.Now(),
						},
					},
				)
			},
		),
	)
	defer server.Close()

	client := NewClient(server.URL)
	cycles, err := client.ListCycles()
	if err != nil {
		t.Fatalf("ListCycles() error = %v", err)
	}

	if len(cycles) != 2 {
		t.Fatalf("got %d cycles, want 2", len(cycles))
	}
	if cycles[0].Decisions[0].Resources != "0-3" {
		t.Errorf("Resources = %q, want %q", cycles[0].Decisions[0].Resources, "0-3")
	}
}

func TestReportCommand_Integration(t *testing.T) {
	t.Run(
		"report prints summary", func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(http.StatusOK)
						_ = json.NewEncoder(w).Encode(
							TraceSummary{
								Summary: trace.Summary{Cycles: 1, Starts: 1, Makespan: 9},
							},
						)
					},
				),
			)
			defer server.Close()

			originalURL := serverURL
			serverURL = server.URL
			defer func() { serverURL = originalURL }()

			reportCmd.SilenceUsage = true
			reportCmd.SilenceErrors = true

			if err := reportCmd.RunE(reportCmd, nil); err != nil {
				t.Errorf("report command error = %v", err)
			}
		},
	)
}
