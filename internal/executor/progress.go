package executor

import (
	"sync"
	"time"

	"github.com/harrison/dispatch/internal/models"
)

// TaskState is a point-in-time view of one task's status.
type TaskState struct {
	ID     string            `json:"id"`
	Worker string            `json:"worker"`
	Status models.TaskStatus `json:"status"`
}

// ProgressSnapshot is a consistent point-in-time view of a running plan.
type ProgressSnapshot struct {
	Plan      string           `json:"plan"`
	State     models.PlanState `json:"state"`
	Wave      string           `json:"wave"`
	Tasks     []TaskState      `json:"tasks"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ProgressTracker is the plan-scoped mutable log of task status. It is the
// only state mutated from multiple concurrent paths: writes are serialized
// through an internal lock while status queries read concurrently.
type ProgressTracker struct {
	mu      sync.RWMutex
	plan    string
	state   models.PlanState
	wave    string
	order   []string // task IDs in plan order
	status  map[string]models.TaskStatus
	workers map[string]string
}

// NewProgressTracker creates a tracker covering every task in the plan,
// all initially pending.
func NewProgressTracker(plan *models.Plan) *ProgressTracker {
	t := &ProgressTracker{
		plan:    plan.Name,
		state:   models.StateNotStarted,
		status:  make(map[string]models.TaskStatus),
		workers: make(map[string]string),
	}
	for _, wave := range plan.Waves {
		for _, task := range wave.Tasks {
			t.order = append(t.order, task.ID)
			t.status[task.ID] = models.StatusPending
			t.workers[task.ID] = task.Worker
		}
	}
	return t
}

// SetState records the plan state machine position.
func (t *ProgressTracker) SetState(state models.PlanState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}

// SetWave records the wave currently being executed or gated.
func (t *ProgressTracker) SetWave(wave string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wave = wave
}

// SetTask records a task status transition.
func (t *ProgressTracker) SetTask(taskID string, status models.TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[taskID] = status
}

// State returns the current plan state.
func (t *ProgressTracker) State() models.PlanState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// TaskStatus returns the current status of a single task.
func (t *ProgressTracker) TaskStatus(taskID string) (models.TaskStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.status[taskID]
	return s, ok
}

// Snapshot returns a consistent point-in-time view of the whole plan.
func (t *ProgressTracker) Snapshot() ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := ProgressSnapshot{
		Plan:      t.plan,
		State:     t.state,
		Wave:      t.wave,
		Tasks:     make([]TaskState, 0, len(t.order)),
		UpdatedAt: time.Now(),
	}
	for _, id := range t.order {
		snapshot.Tasks = append(snapshot.Tasks, TaskState{
			ID:     id,
			Worker: t.workers[id],
			Status: t.status[id],
		})
	}
	return snapshot
}
