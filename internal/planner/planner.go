// Package planner turns a scored analysis into an executable multi-wave
// plan. Plan construction is a pure function of the analysis, the ranked
// candidates, the staging template, and the gate policy, so identical inputs
// always produce identical plans.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/dispatch/internal/models"
)

// Complexity thresholds for plan shape selection.
const (
	// SimpleThreshold: below this, a single-wave single-task plan.
	SimpleThreshold = 0.3
	// ComplexThreshold: at or above this, the full staging template.
	ComplexThreshold = 0.7
	// SupportBand: moderate plans include candidates within this distance
	// of the top candidate's confidence.
	SupportBand = 0.2
)

// ErrNoCandidates is returned when no worker has any overlap with the
// analysis domains.
var ErrNoCandidates = errors.New("no candidate workers for analysis")

// Planner builds plans from analyses and ranked candidates.
type Planner struct {
	template StageTemplate
	policy   GatePolicy
}

// New creates a Planner with the default staging template and gate policy.
func New() *Planner {
	return NewWithConfig(DefaultStageTemplate(), DefaultGatePolicy())
}

// NewWithConfig creates a Planner with a custom staging template and gate
// policy. Both are treated as read-only after construction.
func NewWithConfig(template StageTemplate, policy GatePolicy) *Planner {
	return &Planner{template: template, policy: policy}
}

// Plan builds an execution plan for the request. The plan shape follows the
// complexity score: simple requests get one wave with one task, moderate
// requests one wave with supporting workers, complex requests the full
// staging template with empty stages collapsed.
func (p *Planner) Plan(req models.WorkRequest, analysis models.Analysis, candidates []models.Candidate) (*models.Plan, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	plan := &models.Plan{
		Name:     planName(req.Description),
		Analysis: analysis,
	}

	switch {
	case analysis.ComplexityScore < SimpleThreshold:
		plan.Waves = p.simpleWaves(req, analysis, candidates)
	case analysis.ComplexityScore < ComplexThreshold:
		plan.Waves = p.moderateWaves(req, analysis, candidates)
	default:
		plan.Waves = p.stagedWaves(req, analysis, candidates)
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("planner produced invalid plan: %w", err)
	}
	return plan, nil
}

// simpleWaves builds a single-wave, single-task plan using the top candidate.
func (p *Planner) simpleWaves(req models.WorkRequest, analysis models.Analysis, candidates []models.Candidate) []models.Wave {
	task := models.Task{
		ID:          "1",
		Worker:      candidates[0].Worker.Name,
		Description: req.Description,
	}
	return []models.Wave{{
		Name:  "Wave 1",
		Tasks: []models.Task{task},
		Mode:  models.Sequential,
		Gate:  p.policy.gateFor(analysis),
	}}
}

// moderateWaves builds a single wave containing the top candidate plus any
// candidate whose confidence is within SupportBand of the top. The wave runs
// in parallel unless the selected workers have a natural ordering dependency.
func (p *Planner) moderateWaves(req models.WorkRequest, analysis models.Analysis, candidates []models.Candidate) []models.Wave {
	top := candidates[0].Confidence
	var selected []models.Candidate
	for _, c := range candidates {
		if top-c.Confidence <= SupportBand {
			selected = append(selected, c)
		}
	}

	mode := models.Parallel
	if len(selected) == 1 || hasOrderingDependency(selected) {
		mode = models.Sequential
	}

	tasks := make([]models.Task, 0, len(selected))
	for i, c := range selected {
		task := models.Task{
			ID:          fmt.Sprintf("%d", i+1),
			Worker:      c.Worker.Name,
			Description: req.Description,
		}
		// Sequential supporting workers build on the preceding task.
		if mode == models.Sequential && i > 0 {
			task.DependsOn = []string{tasks[i-1].ID}
		}
		tasks = append(tasks, task)
	}

	return []models.Wave{{
		Name:  "Wave 1",
		Tasks: tasks,
		Mode:  mode,
		Gate:  p.policy.gateFor(analysis),
	}}
}

// stagedWaves builds the multi-wave plan following the staging template.
// Each candidate is assigned to the first stage matching its role; stages
// with no candidates collapse. Every wave carries the risk-derived gate.
func (p *Planner) stagedWaves(req models.WorkRequest, analysis models.Analysis, candidates []models.Candidate) []models.Wave {
	assigned := make(map[string]bool, len(candidates))
	var waves []models.Wave
	taskSeq := 0
	var prevWave []models.Task

	for _, stage := range p.template {
		var stageTasks []models.Task
		for _, c := range candidates {
			if assigned[c.Worker.Name] || !stageAccepts(stage, c.Worker.Role) {
				continue
			}
			assigned[c.Worker.Name] = true
			taskSeq++
			task := models.Task{
				ID:          fmt.Sprintf("%d", taskSeq),
				Worker:      c.Worker.Name,
				Description: stageDescription(stage.Name, req.Description),
			}
			for _, dep := range prevWave {
				task.DependsOn = append(task.DependsOn, dep.ID)
			}
			stageTasks = append(stageTasks, task)
		}

		if len(stageTasks) == 0 {
			continue // collapse empty stage
		}

		mode := models.Parallel
		if len(stageTasks) == 1 {
			mode = models.Sequential
		}

		waves = append(waves, models.Wave{
			Name:  stage.Name,
			Tasks: stageTasks,
			Mode:  mode,
			Gate:  p.policy.gateFor(analysis),
		})
		prevWave = stageTasks
	}

	// Every candidate collapsed away (roster holds no role the template
	// names): fall back to a moderate-shaped plan rather than an empty one.
	if len(waves) == 0 {
		return p.moderateWaves(req, analysis, candidates)
	}

	return waves
}

func stageAccepts(stage Stage, role models.WorkerRole) bool {
	for _, r := range stage.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// stageDescription frames the request for a stage's workers.
func stageDescription(stage, description string) string {
	switch stage {
	case "Foundation":
		return "Design and plan the approach for: " + description
	case "Core":
		return "Implement: " + description
	case "Enhancement":
		return "Review and harden cross-cutting concerns (security, performance) for: " + description
	case "Polish":
		return "Test, verify, and document: " + description
	default:
		return fmt.Sprintf("[%s] %s", stage, description)
	}
}

// planName derives a short plan name from the request description.
func planName(description string) string {
	name := strings.TrimSpace(description)
	if name == "" {
		return "untitled request"
	}
	const maxLen = 60
	if len(name) > maxLen {
		name = strings.TrimSpace(name[:maxLen]) + "..."
	}
	return name
}
