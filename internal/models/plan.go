package models

import (
	"errors"
	"fmt"
)

// ConcurrencyMode controls how tasks within a wave are dispatched.
type ConcurrencyMode string

const (
	// Sequential dispatches tasks one at a time in declaration order,
	// aborting the wave on the first failed task.
	Sequential ConcurrencyMode = "sequential"
	// Parallel dispatches all eligible tasks concurrently and awaits all.
	Parallel ConcurrencyMode = "parallel"
)

// ApprovalRule determines how reviewer verdicts combine into a gate decision.
type ApprovalRule string

const (
	// AnyOne approves on the first approval and may short-circuit remaining reviews.
	AnyOne ApprovalRule = "any_one"
	// All requires every reviewer to approve.
	All ApprovalRule = "all"
	// Majority requires more approvals than rejections.
	Majority ApprovalRule = "majority"
)

// GateSpec describes a mandatory review checkpoint for a wave.
type GateSpec struct {
	Reviewers  []string     // Reviewer worker names
	Rule       ApprovalRule // How verdicts combine
	MaxRetries int          // Bounded revision loop budget
	Escalate   bool         // Critical-risk escalation path
}

// Task is a single unit of delegated work within a wave.
type Task struct {
	ID          string   // Task identifier, unique within the plan
	Worker      string   // Assigned worker name
	Description string   // What the worker is asked to do
	DependsOn   []string // Task IDs in the same or earlier waves
}

// Wave is an ordered stage of a plan sharing a concurrency mode and a single
// quality gate checkpoint.
type Wave struct {
	Name           string
	Tasks          []Task
	Mode           ConcurrencyMode
	Gate           *GateSpec // nil means no gate for this wave
	MaxConcurrency int       // 0 = unbounded (Parallel mode only)
}

// Plan is an immutable ordered sequence of waves built once by the planner.
// The executor only reads it; execution-time state lives in TaskResult records.
type Plan struct {
	Name     string
	Analysis Analysis
	Waves    []Wave
}

// TaskCount returns the total number of tasks across all waves.
func (p *Plan) TaskCount() int {
	n := 0
	for _, w := range p.Waves {
		n += len(w.Tasks)
	}
	return n
}

// Validate checks structural invariants: non-empty waves, unique task IDs,
// assigned workers, and dependencies that reference only tasks in the same
// or an earlier wave. Waves are totally ordered, so a plan passing this
// check has an acyclic dependency graph by construction.
func (p *Plan) Validate() error {
	if len(p.Waves) == 0 {
		return errors.New("plan has no waves")
	}

	seen := make(map[string]int) // task ID -> wave index
	for wi, wave := range p.Waves {
		if len(wave.Tasks) == 0 {
			return fmt.Errorf("wave %s has no tasks", wave.Name)
		}
		if wave.Mode != Sequential && wave.Mode != Parallel {
			return fmt.Errorf("wave %s: unknown concurrency mode %q", wave.Name, wave.Mode)
		}
		for _, task := range wave.Tasks {
			if task.ID == "" {
				return fmt.Errorf("wave %s has a task with an empty ID", wave.Name)
			}
			if task.Worker == "" {
				return fmt.Errorf("task %s has no assigned worker", task.ID)
			}
			if _, dup := seen[task.ID]; dup {
				return fmt.Errorf("task %s: duplicate task ID", task.ID)
			}
			seen[task.ID] = wi
		}
	}

	// Dependencies may only point backwards: same wave (Sequential, earlier
	// declaration) or any earlier wave.
	for wi, wave := range p.Waves {
		for ti, task := range wave.Tasks {
			for _, dep := range task.DependsOn {
				depWave, ok := seen[dep]
				if !ok {
					return fmt.Errorf("task %s: depends on non-existent task %s", task.ID, dep)
				}
				if dep == task.ID {
					return fmt.Errorf("task %s: depends on itself", task.ID)
				}
				if depWave > wi {
					return fmt.Errorf("task %s: depends on task %s in a later wave", task.ID, dep)
				}
				if depWave == wi {
					if wave.Mode == Parallel {
						return fmt.Errorf("task %s: same-wave dependency %s in a parallel wave", task.ID, dep)
					}
					if !declaredEarlier(wave.Tasks, ti, dep) {
						return fmt.Errorf("task %s: depends on task %s declared later in the same wave", task.ID, dep)
					}
				}
			}
		}
	}

	return nil
}

func declaredEarlier(tasks []Task, idx int, dep string) bool {
	for i := 0; i < idx; i++ {
		if tasks[i].ID == dep {
			return true
		}
	}
	return false
}
