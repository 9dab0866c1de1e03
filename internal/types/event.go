package types

// EventKind discriminates the variants of the incoming event union.
type EventKind string

const (
	// EventHello is the protocol handshake. It is the first event of the
	// first batch; the core answers with its own identification before any
	// other decision.
	EventHello EventKind = "hello"
	// EventSimulationBegins carries the platform description. It must
	// precede every job event.
	EventSimulationBegins EventKind = "simulation_begins"
	EventJobSubmitted     EventKind = "job_submitted"
	EventJobCompleted     EventKind = "job_completed"
)

// Event is a tagged union of everything the host may tell the core.
// Exactly one payload pointer matching Kind is non-nil. Kinds the core does
// not recognize are ignored, so the host can grow its vocabulary without
// breaking older schedulers.
type Event struct {
	Kind EventKind `json:"kind"`

	SimulationBegins *SimulationBeginsEvent `json:"simulationBegins,omitempty"`
	JobSubmitted     *JobSubmittedEvent     `json:"jobSubmitted,omitempty"`
	JobCompleted     *JobCompletedEvent     `json:"jobCompleted,omitempty"`
}

// SimulationBeginsEvent describes the platform. HostCount is immutable for
// the rest of the run; resources are numbered 0..HostCount-1.
type SimulationBeginsEvent struct {
	HostCount int `json:"hostCount"`
}

// JobSubmittedEvent announces a new job arrival.
type JobSubmittedEvent struct {
	JobID      string  `json:"jobId"`
	Resources  int     `json:"resources"`
	Walltime   int64   `json:"walltime,omitempty"`
	SubmitTime float64 `json:"submitTime"`
}

// JobCompletedEvent announces that a running job finished.
type JobCompletedEvent struct {
	JobID string `json:"jobId"`
}

// EventBatch is one host message: the current simulated time plus every
// event that happened since the previous batch, in occurrence order.
type EventBatch struct {
	Now    float64 `json:"now"`
	Events []Event `json:"events"`
}
