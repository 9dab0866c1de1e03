package types

// DecisionKind discriminates the variants of the outgoing decision union.
type DecisionKind string

const (
	DecisionHello      DecisionKind = "hello"
	DecisionExecuteJob DecisionKind = "execute_job"
	DecisionRejectJob  DecisionKind = "reject_job"
)

// Decision is one record of a decision batch. Exactly one payload pointer
// matching Kind is non-nil.
type Decision struct {
	Kind DecisionKind `json:"kind"`

	Hello      *HelloDecision      `json:"hello,omitempty"`
	ExecuteJob *ExecuteJobDecision `json:"executeJob,omitempty"`
	RejectJob  *RejectJobDecision  `json:"rejectJob,omitempty"`
}

// HelloDecision identifies the scheduler to the host during the handshake.
type HelloDecision struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ExecuteJobDecision starts a job on a concrete resource set.
// Resources is the range-compressed form ("0-2,5") with ids ascending.
type ExecuteJobDecision struct {
	JobID     string `json:"jobId"`
	Resources string `json:"resources"`
}

// RejectJobDecision discards a job that can never run on this platform.
type RejectJobDecision struct {
	JobID string `json:"jobId"`
}

// DecisionBatch is the core's answer to one event batch. Decisions are
// applied by the host in order, so the ordering here is part of the
// contract. Now echoes the input batch's simulated time; the core has no
// clock of its own.
type DecisionBatch struct {
	Now       float64    `json:"now"`
	Decisions []Decision `json:"decisions"`
}

// NewExecuteJob builds an execute decision for the given allocation.
func NewExecuteJob(jobID string, resources ResourceSet) Decision {
	return Decision{
		Kind:       DecisionExecuteJob,
		ExecuteJob: &ExecuteJobDecision{JobID: jobID, Resources: resources.String()},
	}
}

// NewRejectJob builds a reject decision.
func NewRejectJob(jobID string) Decision {
	return Decision{
		Kind:      DecisionRejectJob,
		RejectJob: &RejectJobDecision{JobID: jobID},
	}
}

// NewHello builds the handshake answer.
func NewHello(name, version string) Decision {
	return Decision{
		Kind:  DecisionHello,
		Hello: &HelloDecision{Name: name, Version: version},
	}
}
