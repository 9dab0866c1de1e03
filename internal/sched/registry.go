package sched

import (
	"github.com/hpcsched/batling/internal/types"
)

// Registry is the canonical record of every known job: a FIFO pending queue
// plus the running set. Arrival order is a scheduling invariant, so the
// pending queue is never reordered; backfilling removes jobs from the
// middle, it never swaps them.
type Registry struct {
	capacity int
	pending  []*types.Job
	running  map[string]*types.Job
}

// NewRegistry creates an empty registry for a platform with the given
// resource capacity.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		running:  make(map[string]*types.Job),
	}
}

// Capacity returns the total platform resource count.
func (r *Registry) Capacity() int { return r.capacity }

// Submit admits a job into the pending queue. A job requesting more
// resources than the platform has can never run; it is rejected immediately
// and never enqueued. The return value reports whether the job was admitted.
func (r *Registry) Submit(job *types.Job) bool {
	if job.Resources > r.capacity {
		job.State = types.JobRejected
		return false
	}
	job.State = types.JobPending
	r.pending = append(r.pending, job)
	return true
}

// Head returns the first pending job, or nil if the queue is empty.
func (r *Registry) Head() *types.Job {
	if len(r.pending) == 0 {
		return nil
	}
	return r.pending[0]
}

// Pending returns the pending queue in arrival order. The slice is the
// registry's own; callers must not mutate it.
func (r *Registry) Pending() []*types.Job {
	return r.pending
}

// Running returns the running set in unspecified order.
func (r *Registry) Running() []*types.Job {
	out := make([]*types.Job, 0, len(r.running))
	for _, job := range r.running {
		out = append(out, job)
	}
	return out
}

// MarkRunning moves a pending job into the running set with the given
// allocation. The job keeps its position semantics: it simply disappears
// from the queue, everything behind it shifts up.
func (r *Registry) MarkRunning(job *types.Job, alloc types.Allocation) {
	for i, queued := range r.pending {
		if queued.JobID == job.JobID {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	job.State = types.JobRunning
	job.Allocation = &alloc
	r.running[job.JobID] = job
}

// Complete removes a job from the running set and returns it. Unknown or
// already-completed job ids return ok=false: simulation hosts may redeliver
// completion signals, and treating that as fatal would be worse than the
// no-op.
func (r *Registry) Complete(jobID string) (*types.Job, bool) {
	job, ok := r.running[jobID]
	if !ok {
		return nil, false
	}
	delete(r.running, jobID)
	job.State = types.JobCompleted
	return job, true
}
