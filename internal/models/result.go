package models

import "time"

// TaskStatus tracks the lifecycle of a single task during execution.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
	StatusRejected  TaskStatus = "rejected"
)

// Terminal reports whether the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusRejected
}

// Decision is a reviewer's verdict on a wave's outputs.
type Decision string

const (
	// Approve accepts the output as-is.
	Approve Decision = "approve"
	// ChangesRequested asks for a revision with structured feedback. It never
	// counts as an immediate hard failure.
	ChangesRequested Decision = "changes_requested"
	// Reject refuses the output. A Reject against a Critical-risk plan is
	// terminal regardless of the gate's approval rule.
	Reject Decision = "reject"
)

// Verdict is a single reviewer's decision plus notes.
type Verdict struct {
	Reviewer string
	Decision Decision
	Notes    string
}

// TaskResult records the execution-time outcome of one task. It is mutated
// only by the executor and the gate enforcer, never by workers directly.
type TaskResult struct {
	TaskID   string
	Worker   string
	Status   TaskStatus
	Output   string
	Err      error
	Duration time.Duration
	Attempts int // Invocation attempts, including retries
}

// Succeeded reports whether the task reached a successful terminal state.
func (r TaskResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// WaveResult aggregates the outcome of a single wave pass, including gate
// verdicts when the wave had a required gate.
type WaveResult struct {
	Wave     string
	Attempt  int // 1-indexed pass over this wave (revision loops re-run waves)
	Results  []TaskResult
	Verdicts []Verdict
	Approved bool
	Duration time.Duration
}

// PlanState is the executor's state machine position for a plan.
type PlanState string

const (
	StateNotStarted PlanState = "not_started"
	StateRunning    PlanState = "running"
	StateGateCheck  PlanState = "gate_check"
	StateDelivered  PlanState = "delivered"
	StateAborted    PlanState = "aborted"
)

// PlanResult is the terminal outcome of executing a plan. Delivered carries
// the aggregated outputs of the final wave; Aborted carries the first fatal
// cause. Wave history is always included for diagnostics, even on abort.
type PlanResult struct {
	State     PlanState
	Waves     []WaveResult      // Full pass history, in execution order
	Outputs   map[string]string // Final wave outputs, task ID -> output (Delivered only)
	Cause     error             // First fatal cause (Aborted only)
	Escalated bool              // The aborting gate carried an escalation path
	Duration  time.Duration
}

// Delivered reports whether the plan completed all waves and gates.
func (r *PlanResult) Delivered() bool {
	return r.State == StateDelivered
}
