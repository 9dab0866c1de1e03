package sched

import (
	"fmt"
	"sort"

	"github.com/hpcsched/batling/internal/types"
)

// Strategy selects the backfilling algorithm.
type Strategy string

const (
	// StrategyFCFS starts the queue head when it fits and never backfills.
	StrategyFCFS Strategy = "fcfs"
	// StrategyEASY backfills behind a shadow-time guarantee for the head.
	StrategyEASY Strategy = "easy"
	// StrategyConservative backfills only jobs whose full resource and
	// duration footprint fits the reservation profile starting now.
	StrategyConservative Strategy = "conservative"
)

// Placement selects how a concrete resource subset is carved out of the
// eligible set once a job has been chosen to start.
type Placement string

const (
	// PlacementLowestID takes the numerically smallest ids.
	PlacementLowestID Placement = "lowest"
	// PlacementBestEffortContiguous prefers a consecutive run of ids and
	// falls back to lowest-id-first when none exists.
	PlacementBestEffortContiguous Placement = "best-effort"
	// PlacementStrictContiguous refuses to start a job without a
	// consecutive run, even when a scattered set would fit.
	PlacementStrictContiguous Placement = "contiguous"
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFCFS, StrategyEASY, StrategyConservative:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (valid options: fcfs, easy, conservative)", s)
}

// ParsePlacement maps a configuration string onto a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case PlacementLowestID, PlacementBestEffortContiguous, PlacementStrictContiguous:
		return Placement(s), nil
	}
	return "", fmt.Errorf("unknown placement %q (valid options: lowest, best-effort, contiguous)", s)
}

// Stats counts backfill outcomes across the run.
type Stats struct {
	Backfills              uint64 `json:"backfills"`
	ContiguousBackfills    uint64 `json:"contiguousBackfills"`
	NonContiguousBackfills uint64 `json:"nonContiguousBackfills"`
}

// Engine runs the admission loop for one scheduler instance. All variants
// share the same shape: start queue heads while they fit, and once the head
// blocks, backfill at most one other job, then stop for the cycle. The head
// is never starved in favor of unlimited backfilling.
type Engine struct {
	strategy  Strategy
	placement Placement
	pool      Pool
	registry  *Registry
	stats     Stats
}

// NewEngine wires an engine to its pool and registry.
func NewEngine(strategy Strategy, placement Placement, pool Pool, registry *Registry) *Engine {
	return &Engine{
		strategy:  strategy,
		placement: placement,
		pool:      pool,
		registry:  registry,
	}
}

// Stats returns the backfill counters accumulated so far.
func (e *Engine) Stats() Stats { return e.stats }

// Schedule runs one decision cycle at the given tick and returns the start
// decisions in emission order. An error from the pool is an invariant breach
// and aborts the cycle.
func (e *Engine) Schedule(now int64) ([]types.Decision, error) {
	var decisions []types.Decision
	for {
		head := e.registry.Head()
		if head == nil {
			return decisions, nil
		}

		picked, err := e.headCandidate(head, now)
		if err != nil {
			return decisions, err
		}
		if picked != nil {
			if err := e.start(head, picked, now); err != nil {
				return decisions, err
			}
			decisions = append(decisions, types.NewExecuteJob(head.JobID, picked))
			continue
		}

		// Head blocked: at most one backfill attempt, then stop.
		if e.strategy != StrategyFCFS {
			d, err := e.backfill(head, now)
			if err != nil {
				return decisions, err
			}
			if d != nil {
				decisions = append(decisions, *d)
			}
		}
		return decisions, nil
	}
}

// headCandidate returns the resource subset the queue head would start on
// right now, or nil if it cannot start this cycle.
func (e *Engine) headCandidate(head *types.Job, now int64) (types.ResourceSet, error) {
	free, err := e.pool.FreeAt(now)
	if err != nil {
		return nil, err
	}

	eligible := free
	if e.strategy == StrategyConservative {
		// The head's whole footprint must clear the future profile, not
		// just the current instant.
		eligible = e.pool.Intersection(free, now, head.Walltime)
	}
	if eligible.Len() < head.Resources {
		return nil, nil
	}
	return e.place(eligible, head.Resources), nil
}

// start reserves the chosen set and moves the job into the running set.
func (e *Engine) start(job *types.Job, set types.ResourceSet, now int64) error {
	if err := e.pool.Reserve(set, now, e.reserveDuration(job), job.JobID); err != nil {
		return err
	}
	e.registry.MarkRunning(job, types.Allocation{Resources: set, StartTime: now})
	return nil
}

// reserveDuration translates a job's walltime into a reservation span.
// FCFS never tracks durations; its point pool ignores the value anyway.
func (e *Engine) reserveDuration(job *types.Job) int64 {
	if e.strategy == StrategyFCFS {
		return 0
	}
	return job.Walltime
}

// backfill tries to start exactly one queued job other than the head.
func (e *Engine) backfill(head *types.Job, now int64) (*types.Decision, error) {
	switch e.strategy {
	case StrategyEASY:
		return e.easyBackfill(head, now)
	case StrategyConservative:
		return e.conservativeBackfill(head, now)
	}
	return nil, nil
}

// easyBackfill scans the queue behind the head in arrival order and starts
// the first job that cannot delay the head: either it finishes by the
// head's shadow time, or it is small enough to fit in the nodes the head
// will not need even if it overruns.
func (e *Engine) easyBackfill(head *types.Job, now int64) (*types.Decision, error) {
	free, err := e.pool.FreeAt(now)
	if err != nil {
		return nil, err
	}

	shadow, extra, haveShadow := e.shadowTime(head, now, free.Len())
	if !haveShadow {
		// Not enough resources ever come back (some running jobs have no
		// known expiry). No backfill can be proven safe.
		return nil, nil
	}

	pending := e.registry.Pending()
	for _, job := range pending[1:] {
		if job.Resources > free.Len() {
			continue
		}
		finishesInTime := job.Walltime > 0 && now+job.Walltime <= shadow
		fitsExtra := job.Resources <= extra
		if !finishesInTime && !fitsExtra {
			continue
		}

		set := e.place(free, job.Resources)
		if set == nil {
			// Strict placement found no contiguous run for this job;
			// treat as "does not fit" and keep scanning.
			continue
		}
		if err := e.start(job, set, now); err != nil {
			return nil, err
		}
		e.recordBackfill(set)
		d := types.NewExecuteJob(job.JobID, set)
		return &d, nil
	}
	return nil, nil
}

// shadowTime walks the running set in expected-completion order and finds
// the earliest tick at which enough resources have been freed to satisfy the
// head. extra is how many resources are free at that tick beyond the head's
// need. ok is false when the running set can never free enough.
func (e *Engine) shadowTime(head *types.Job, now int64, freeNow int) (shadow int64, extra int, ok bool) {
	// The head can be blocked by placement alone. When enough resources
	// are already free the shadow is now, not the next release.
	if freeNow >= head.Resources {
		return now, freeNow - head.Resources, true
	}

	type release struct {
		at    int64
		count int
	}
	var releases []release
	for _, job := range e.registry.Running() {
		if job.Allocation == nil {
			continue
		}
		end, known := job.Allocation.End(job.Walltime)
		if !known {
			// No expiry: these resources never count as coming back.
			continue
		}
		if end < now {
			end = now
		}
		releases = append(releases, release{at: end, count: job.Allocation.Resources.Len()})
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].at < releases[j].at })

	avail := freeNow
	for i := 0; i < len(releases); {
		t := releases[i].at
		for i < len(releases) && releases[i].at == t {
			avail += releases[i].count
			i++
		}
		if avail >= head.Resources {
			return t, avail - head.Resources, true
		}
	}
	return 0, 0, false
}

// conservativeBackfill starts the first queued job whose anchor point is
// now, i.e. whose full resource footprint clears the reservation profile
// without disturbing anything already placed.
func (e *Engine) conservativeBackfill(head *types.Job, now int64) (*types.Decision, error) {
	free, err := e.pool.FreeAt(now)
	if err != nil {
		return nil, err
	}

	pending := e.registry.Pending()
	for _, job := range pending[1:] {
		if e.anchorPoint(job, now) != now {
			continue
		}
		eligible := e.pool.Intersection(free, now, job.Walltime)
		if eligible.Len() < job.Resources {
			continue
		}
		set := e.place(eligible, job.Resources)
		if set == nil {
			continue
		}
		if err := e.start(job, set, now); err != nil {
			return nil, err
		}
		e.recordBackfill(set)
		d := types.NewExecuteJob(job.JobID, set)
		return &d, nil
	}
	return nil, nil
}

// anchorPoint returns the earliest tick at or after now at which the job's
// full resource and duration requirement can be satisfied against the
// current profile, or -1 if no such tick exists. Past the materialized
// horizon only indefinite holders remain, so the scan never needs to look
// further than one tick beyond it.
func (e *Engine) anchorPoint(job *types.Job, now int64) int64 {
	all := types.NewResourceRange(e.registry.Capacity())
	limit := now
	if p, isProfile := e.pool.(*Profile); isProfile {
		if h := p.Horizon(); h > limit {
			limit = h
		}
	}
	for t := now; t <= limit; t++ {
		eligible := e.pool.Intersection(all, t, job.Walltime)
		if eligible.Len() >= job.Resources {
			return t
		}
	}
	return -1
}

// place carves the concrete subset out of the eligible set according to the
// placement policy. A nil result means the policy refused the job.
func (e *Engine) place(eligible types.ResourceSet, k int) types.ResourceSet {
	switch e.placement {
	case PlacementBestEffortContiguous:
		if run := eligible.ContiguousRun(k); run != nil {
			return run
		}
		return eligible.Take(k)
	case PlacementStrictContiguous:
		return eligible.ContiguousRun(k)
	default:
		return eligible.Take(k)
	}
}

func (e *Engine) recordBackfill(set types.ResourceSet) {
	e.stats.Backfills++
	if isContiguous(set) {
		e.stats.ContiguousBackfills++
	} else {
		e.stats.NonContiguousBackfills++
	}
}

func isContiguous(set types.ResourceSet) bool {
	if set.Len() == 0 {
		return true
	}
	return int(set[set.Len()-1]-set[0]) == set.Len()-1
}
