package types

// JobState represents the current lifecycle state of a job
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobRejected  JobState = "rejected"
)

// Job represents a single job known to the scheduler.
// A job belongs to exactly one of the pending queue, the running set, or a
// terminal state, and holds at most one allocation at a time.
type Job struct {
	// JobID is an opaque identifier assigned by the host. Stable for the
	// job's lifetime.
	JobID string `json:"jobId"`

	// Resources is the number of compute resources the job needs.
	// A job requesting more than the platform has is rejected on arrival.
	Resources int `json:"resources"`

	// Walltime is the expected run duration in simulation ticks.
	// Zero means the host supplied no estimate; strategies that reason
	// about the future treat such jobs as holding their resources until a
	// completion event arrives.
	Walltime int64 `json:"walltime,omitempty"`

	// SubmitTime is the simulated time at which the job arrived.
	SubmitTime float64 `json:"submitTime"`

	State JobState `json:"state"`

	// Allocation is set while the job is running and nil otherwise.
	Allocation *Allocation `json:"allocation,omitempty"`
}

// Allocation records the resources a running job holds and when it got them.
// The resource set size always equals the job's resource request.
type Allocation struct {
	Resources ResourceSet `json:"resources"`
	StartTime int64       `json:"startTime"`
}

// End returns the expected completion tick of the allocation for a job with
// the given walltime, and false if the walltime is unknown.
func (a *Allocation) End(walltime int64) (int64, bool) {
	if walltime <= 0 {
		return 0, false
	}
	return a.StartTime + walltime, true
}
