package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Phase represents the phase of execution where an error occurred.
type Phase int

const (
	// PhasePlan represents errors during plan validation.
	PhasePlan Phase = iota
	// PhaseWave represents errors during wave execution.
	PhaseWave
	// PhaseTask represents errors during task execution.
	PhaseTask
	// PhaseGate represents errors during quality gate review.
	PhaseGate
)

// String returns the string representation of Phase.
func (p Phase) String() string {
	switch p {
	case PhasePlan:
		return "plan"
	case PhaseWave:
		return "wave"
	case PhaseTask:
		return "task"
	case PhaseGate:
		return "gate"
	default:
		return "unknown"
	}
}

// TaskError represents a worker invocation failure for a specific task.
type TaskError struct {
	TaskID    string
	Message   string
	Err       error
	Timestamp time.Time
}

// NewTaskError creates a TaskError with the current timestamp.
func NewTaskError(taskID, msg string, err error) *TaskError {
	return &TaskError{
		TaskID:    taskID,
		Message:   msg,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface for TaskError.
func (e *TaskError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("task %s: %s", e.TaskID, e.Message))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a worker invocation that exceeded its timeout.
// Timeouts follow the same retry/abort path as any other task failure.
type TimeoutError struct {
	TaskID    string
	Timeout   time.Duration
	Timestamp time.Time
}

// NewTimeoutError creates a TimeoutError with the current timestamp.
func NewTimeoutError(taskID string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{
		TaskID:    taskID,
		Timeout:   timeout,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s: timeout after %v", e.TaskID, e.Timeout)
}

// Unwrap returns context.DeadlineExceeded to support error wrapping.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// GateRejectionError represents a quality gate that did not approve a wave.
// Critical marks the safety rule: a single explicit rejection against
// Critical-risk work stops the plan immediately, bypassing the retry budget.
// Escalate marks rejections from gates with an escalation path; those aborts
// are flagged for manual review rather than silently discarded.
type GateRejectionError struct {
	Wave     string
	Feedback string
	Critical bool
	Escalate bool
}

// Error implements the error interface for GateRejectionError.
func (e *GateRejectionError) Error() string {
	kind := "quality gate rejected"
	if e.Critical {
		kind = "critical rejection on"
	}
	suffix := ""
	if e.Escalate {
		suffix = " (escalated for manual review)"
	}
	if e.Feedback == "" {
		return fmt.Sprintf("%s %s%s", kind, e.Wave, suffix)
	}
	return fmt.Sprintf("%s %s%s: %s", kind, e.Wave, suffix, e.Feedback)
}

// WaveError wraps the first fatal task failure of a wave with phase context.
type WaveError struct {
	Wave  string
	Phase Phase
	Err   error
}

// Error implements the error interface for WaveError.
func (e *WaveError) Error() string {
	return fmt.Sprintf("%s failed in %s phase: %v", e.Wave, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *WaveError) Unwrap() error {
	return e.Err
}

// IsTimeoutError checks if the error is or wraps a TimeoutError or
// context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsGateRejection checks if the error is or wraps a GateRejectionError.
func IsGateRejection(err error) bool {
	if err == nil {
		return false
	}
	var ge *GateRejectionError
	return errors.As(err, &ge)
}

// IsCriticalRejection checks if the error is a critical gate rejection.
func IsCriticalRejection(err error) bool {
	var ge *GateRejectionError
	return errors.As(err, &ge) && ge.Critical
}

// IsEscalatedRejection checks if the error is a gate rejection whose gate
// declared an escalation path.
func IsEscalatedRejection(err error) bool {
	var ge *GateRejectionError
	return errors.As(err, &ge) && ge.Escalate
}
