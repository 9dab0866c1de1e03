// Package trace records the decision history of a scheduler run so it can
// be analyzed after the fact: which jobs started when, on what resources,
// and how long the whole workload took.
package trace

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hpcsched/batling/internal/types"
)

var (
	// ErrCycleAlreadyExists is returned when recording a cycle whose id is
	// already stored
	ErrCycleAlreadyExists = errors.New("cycle already recorded")
)

// DecisionRecord is the stored form of one decision.
type DecisionRecord struct {
	Kind      string `json:"kind"`
	JobID     string `json:"jobId,omitempty"`
	Resources string `json:"resources,omitempty"`
}

// CycleRecord captures everything one decision cycle emitted.
type CycleRecord struct {
	CycleID    string           `json:"cycleId"`
	SimTime    float64          `json:"simTime"`
	Decisions  []DecisionRecord `json:"decisions"`
	RecordedAt time.Time        `json:"recordedAt"`
}

// NewCycleRecord converts a decision batch into its stored form, assigning
// a fresh cycle id.
func NewCycleRecord(batch types.DecisionBatch) CycleRecord {
	rec := CycleRecord{
		CycleID:    uuid.NewString(),
		SimTime:    batch.Now,
		RecordedAt: time.Now(),
	}
	for _, d := range batch.Decisions {
		dr := DecisionRecord{Kind: string(d.Kind)}
		switch d.Kind {
		case types.DecisionExecuteJob:
			dr.JobID = d.ExecuteJob.JobID
			dr.Resources = d.ExecuteJob.Resources
		case types.DecisionRejectJob:
			dr.JobID = d.RejectJob.JobID
		}
		rec.Decisions = append(rec.Decisions, dr)
	}
	return rec
}

// Summary is the per-run aggregate the analysis tooling starts from.
type Summary struct {
	Cycles  int `json:"cycles"`
	Starts  int `json:"starts"`
	Rejects int `json:"rejects"`

	// Makespan is the simulated time of the last cycle that started a
	// job. Zero when nothing has started yet.
	Makespan float64 `json:"makespan"`
}

// Store persists cycle records for one run.
type Store interface {
	RecordCycle(rec CycleRecord) error
	ListCycles() ([]CycleRecord, error)
	Summary() (Summary, error)
	Close() error
}

// InMemoryStore keeps the trace in memory; the data is gone when the
// process exits. It is safe for concurrent use.
type InMemoryStore struct {
	mu     sync.RWMutex
	cycles []CycleRecord
	byID   map[string]struct{}
}

// NewInMemoryStore creates an empty in-memory trace store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID: make(map[string]struct{}),
	}
}

// RecordCycle appends one cycle to the trace.
func (s *InMemoryStore) RecordCycle(rec CycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.CycleID]; exists {
		return ErrCycleAlreadyExists
	}
	s.byID[rec.CycleID] = struct{}{}
	s.cycles = append(s.cycles, rec)
	return nil
}

// ListCycles returns all recorded cycles in recording order.
func (s *InMemoryStore) ListCycles() ([]CycleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CycleRecord, len(s.cycles))
	copy(out, s.cycles)
	return out, nil
}

// Summary aggregates the recorded cycles.
func (s *InMemoryStore) Summary() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	sum.Cycles = len(s.cycles)
	for _, rec := range s.cycles {
		for _, d := range rec.Decisions {
			switch types.DecisionKind(d.Kind) {
			case types.DecisionExecuteJob:
				sum.Starts++
				if rec.SimTime > sum.Makespan {
					sum.Makespan = rec.SimTime
				}
			case types.DecisionRejectJob:
				sum.Rejects++
			}
		}
	}
	return sum, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
