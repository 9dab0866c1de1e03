package sched

import (
	"errors"
	"fmt"
	"log"

	"github.com/hpcsched/batling/internal/codec"
	"github.com/hpcsched/batling/internal/types"
)

const (
	// Name and Version identify this scheduler to the host during the
	// protocol handshake.
	Name    = "batling"
	Version = "0.1.0"
)

var (
	// ErrNotInitialized is returned when a decision cycle runs before a
	// successful Initialize.
	ErrNotInitialized = errors.New("scheduler not initialized")
	// ErrNoPlatform is returned when a job event arrives before the
	// simulation-begins event that describes the platform.
	ErrNoPlatform = errors.New("job event received before simulation begins")
)

// Scheduler is one decision-core instance: the registry, the reservation
// pool, and the engine, driven synchronously by the host one event batch at
// a time. The host owns invocation ordering and never runs two cycles
// concurrently, so the scheduler needs no locking of its own.
type Scheduler struct {
	strategy  Strategy
	placement Placement

	enc         codec.Codec
	initialized bool

	hostCount int
	pool      Pool
	registry  *Registry
	engine    *Engine
}

// New creates a scheduler with the given policies. It is inert until
// Initialize succeeds.
func New(strategy Strategy, placement Placement) *Scheduler {
	return &Scheduler{strategy: strategy, placement: placement}
}

// Initialize validates the host's configuration flags, establishes the
// batch encoding, and resets all scheduling state. Unrecognized flags fail
// the whole initialization and leave no state behind.
func (s *Scheduler) Initialize(flags uint32) error {
	enc, err := codec.ForFlags(flags)
	if err != nil {
		return err
	}
	s.enc = enc
	s.hostCount = 0
	s.pool = nil
	s.registry = nil
	s.engine = nil
	s.initialized = true
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (s *Scheduler) Initialized() bool { return s.initialized }

// Codec returns the batch encoding negotiated at initialization.
func (s *Scheduler) Codec() codec.Codec { return s.enc }

// Strategy returns the configured backfill strategy.
func (s *Scheduler) Strategy() Strategy { return s.strategy }

// Placement returns the configured placement policy.
func (s *Scheduler) Placement() Placement { return s.placement }

// Stats returns the engine's backfill counters, or zeroes before the
// simulation has begun.
func (s *Scheduler) Stats() Stats {
	if s.engine == nil {
		return Stats{}
	}
	return s.engine.Stats()
}

// Shutdown releases all owned state. It is idempotent.
func (s *Scheduler) Shutdown() {
	s.enc = nil
	s.pool = nil
	s.registry = nil
	s.engine = nil
	s.hostCount = 0
	s.initialized = false
}

// TakeDecisions consumes one event batch and returns the decisions for this
// cycle. Every event is applied before any scheduling runs, then the engine
// runs to its single-head/single-backfill fixed point, and the accumulated
// decisions are returned in emission order. The cycle's time is the batch's
// time; the core has no clock of its own.
func (s *Scheduler) TakeDecisions(batch types.EventBatch) (types.DecisionBatch, error) {
	if !s.initialized {
		return types.DecisionBatch{}, ErrNotInitialized
	}

	now := int64(batch.Now)
	out := types.DecisionBatch{Now: batch.Now}
	if s.pool != nil {
		s.pool.Advance(now)
	}

	for _, ev := range batch.Events {
		switch ev.Kind {
		case types.EventHello:
			// Handshake: identify ourselves before any other decision.
			out.Decisions = append(out.Decisions, types.NewHello(Name, Version))

		case types.EventSimulationBegins:
			if ev.SimulationBegins == nil {
				return out, fmt.Errorf("simulation_begins event without payload")
			}
			s.setupPlatform(ev.SimulationBegins.HostCount, now)
			log.Printf("simulation started with %d hosts (strategy=%s placement=%s)",
				s.hostCount, s.strategy, s.placement)

		case types.EventJobSubmitted:
			if ev.JobSubmitted == nil {
				continue
			}
			if s.registry == nil {
				return out, ErrNoPlatform
			}
			sub := ev.JobSubmitted
			job := &types.Job{
				JobID:      sub.JobID,
				Resources:  sub.Resources,
				Walltime:   sub.Walltime,
				SubmitTime: sub.SubmitTime,
			}
			if !s.registry.Submit(job) {
				log.Printf("job %s requests %d of %d resources, rejecting",
					job.JobID, job.Resources, s.hostCount)
				out.Decisions = append(out.Decisions, types.NewRejectJob(job.JobID))
			}

		case types.EventJobCompleted:
			if ev.JobCompleted == nil {
				continue
			}
			if s.registry == nil {
				return out, ErrNoPlatform
			}
			job, ok := s.registry.Complete(ev.JobCompleted.JobID)
			if !ok {
				// Hosts may redeliver completion signals; tolerate it.
				log.Printf("completion for unknown job %s, ignoring", ev.JobCompleted.JobID)
				continue
			}
			s.pool.Release(job.Allocation.Resources, now)

		default:
			// Forward-compatible: skip kinds this core does not know.
			log.Printf("ignoring unrecognized event kind %q", ev.Kind)
		}
	}

	if s.engine != nil {
		decisions, err := s.engine.Schedule(now)
		out.Decisions = append(out.Decisions, decisions...)
		if err != nil {
			return out, fmt.Errorf("scheduling cycle at t=%d: %w", now, err)
		}
	}
	return out, nil
}

// setupPlatform builds the pool, registry and engine once the host has told
// us how large the platform is. FCFS gets a point pool; the backfilling
// strategies need the full reservation profile.
func (s *Scheduler) setupPlatform(hostCount int, now int64) {
	s.hostCount = hostCount
	if s.strategy == StrategyFCFS {
		s.pool = NewPointPool(hostCount)
	} else {
		profile := NewProfile(hostCount)
		profile.Advance(now)
		s.pool = profile
	}
	s.registry = NewRegistry(hostCount)
	s.engine = NewEngine(s.strategy, s.placement, s.pool, s.registry)
}
