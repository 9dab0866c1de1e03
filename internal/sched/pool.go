package sched

import (
	"errors"
	"fmt"

	"github.com/hpcsched/batling/internal/types"
)

// ErrPastTime is returned when a pool is queried for an instant that
// precedes the current simulated time. That is always a caller bug, never a
// condition to recover from.
var ErrPastTime = errors.New("queried time precedes current simulated time")

// ConflictError reports an attempt to reserve a resource that is already
// held. Double allocation is the most damaging failure mode a scheduler has,
// so the pool refuses the reservation and surfaces who holds what instead of
// silently corrupting its tables.
type ConflictError struct {
	JobID    string
	Resource types.ResourceID
	Time     int64
	Holder   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"resource conflict: job %s wants resource %d at t=%d, held by %s",
		e.JobID, e.Resource, e.Time, e.Holder,
	)
}

// Pool models which resources are free or held over time.
//
// Two implementations exist: PointPool keeps a single "now" snapshot for
// strategies that never reason about durations, and Profile keeps the full
// time-indexed reservation table that backfilling depends on.
type Pool interface {
	// Advance moves the pool's notion of the current simulated time
	// forward. Called once per decision cycle before any query.
	Advance(now int64)

	// FreeAt returns the resources unheld at instant t. It fails only when
	// t precedes the current simulated time.
	FreeAt(t int64) (types.ResourceSet, error)

	// Reserve marks every resource in set as held by jobID for
	// [from, from+duration). A non-positive duration means the holder's
	// expiry is unknown and the resources stay held until released.
	// Every resource must be free over the whole interval; a violation is
	// a *ConflictError, not a normal rejection.
	Reserve(set types.ResourceSet, from, duration int64, jobID string) error

	// Release frees the given resources from from onward. Releasing
	// resources that are not held is a no-op, so duplicate completion
	// signals from the host cannot double-free.
	Release(set types.ResourceSet, from int64)

	// Intersection returns the subset of candidates free for the entire
	// half-open interval [from, from+duration), narrowing the candidate
	// set breakpoint by breakpoint. A non-positive duration means "for as
	// far as the pool can see".
	Intersection(candidates types.ResourceSet, from, duration int64) types.ResourceSet
}

// PointPool is the degenerate pool used by FCFS-style strategies: a single
// snapshot of what is free right now, with no time axis and no walltime
// bookkeeping.
type PointPool struct {
	free types.ResourceSet
	held map[types.ResourceID]string
}

// NewPointPool creates a point pool with resources 0..hostCount-1 free.
func NewPointPool(hostCount int) *PointPool {
	return &PointPool{
		free: types.NewResourceRange(hostCount),
		held: make(map[types.ResourceID]string),
	}
}

// Advance is a no-op: a point pool has no time axis.
func (p *PointPool) Advance(now int64) {}

// FreeAt returns the current snapshot regardless of t.
func (p *PointPool) FreeAt(t int64) (types.ResourceSet, error) {
	return p.free.Clone(), nil
}

// Reserve removes the set from the free snapshot. Duration is ignored.
func (p *PointPool) Reserve(set types.ResourceSet, from, duration int64, jobID string) error {
	for _, r := range set {
		if !p.free.Contains(r) {
			return &ConflictError{JobID: jobID, Resource: r, Time: from, Holder: p.held[r]}
		}
	}
	for _, r := range set {
		p.free = p.free.Remove(r)
		p.held[r] = jobID
	}
	return nil
}

// Release returns the set to the free snapshot. Unheld resources are skipped.
func (p *PointPool) Release(set types.ResourceSet, from int64) {
	for _, r := range set {
		if _, ok := p.held[r]; !ok {
			continue
		}
		delete(p.held, r)
		p.free = p.free.Add(r)
	}
}

// Intersection degenerates to membership in the current snapshot.
func (p *PointPool) Intersection(candidates types.ResourceSet, from, duration int64) types.ResourceSet {
	return candidates.Intersect(p.free)
}
