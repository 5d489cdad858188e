package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/harrison/dispatch/internal/analyzer"
	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/planner"
	"github.com/harrison/dispatch/internal/registry"
	"github.com/harrison/dispatch/internal/scorer"
)

// PlanHandle identifies a submitted plan for later status and result queries.
type PlanHandle string

// Service runs the full pipeline (analyze, score, plan, execute) for
// submitted work requests and tracks each plan by handle. Execution runs in
// the background; Status reads live progress and Result blocks until the
// plan reaches a terminal state.
type Service struct {
	analyzer *analyzer.Analyzer
	registry *registry.Registry
	planner  *planner.Planner
	orch     *Orchestrator

	mu   sync.RWMutex
	runs map[PlanHandle]*run
}

type run struct {
	plan    *models.Plan
	tracker *ProgressTracker
	done    chan struct{}
	result  *models.PlanResult
	err     error
}

// NewService wires the pipeline together.
func NewService(a *analyzer.Analyzer, reg *registry.Registry, p *planner.Planner, orch *Orchestrator) *Service {
	return &Service{
		analyzer: a,
		registry: reg,
		planner:  p,
		orch:     orch,
		runs:     make(map[PlanHandle]*run),
	}
}

// BuildPlan runs the pipeline up to (but not including) execution. Used by
// dry-run planning and internally by Submit.
func (s *Service) BuildPlan(req models.WorkRequest) (*models.Plan, []models.Candidate, error) {
	analysis := s.analyzer.Analyze(req)

	if analysis.WorkerOverride != "" && !s.registry.Exists(analysis.WorkerOverride) {
		return nil, nil, fmt.Errorf("requested worker %q is not in the roster", analysis.WorkerOverride)
	}

	candidates := scorer.Score(analysis, s.registry)
	plan, err := s.planner.Plan(req, analysis, candidates)
	if err != nil {
		return nil, candidates, err
	}
	return plan, candidates, nil
}

// Submit builds a plan for the request and starts executing it in the
// background. The returned handle is stable for the life of the service.
func (s *Service) Submit(ctx context.Context, req models.WorkRequest) (PlanHandle, error) {
	plan, _, err := s.BuildPlan(req)
	if err != nil {
		return "", err
	}

	handle := PlanHandle(uuid.New().String())
	r := &run{
		plan:    plan,
		tracker: NewProgressTracker(plan),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.runs[handle] = r
	s.mu.Unlock()

	go func() {
		defer close(r.done)
		r.result, r.err = s.orch.Execute(ctx, plan, r.tracker)
	}()

	return handle, nil
}

// Status returns a live progress snapshot for a submitted plan.
func (s *Service) Status(handle PlanHandle) (ProgressSnapshot, error) {
	s.mu.RLock()
	r, ok := s.runs[handle]
	s.mu.RUnlock()
	if !ok {
		return ProgressSnapshot{}, fmt.Errorf("unknown plan handle %s", handle)
	}
	return r.tracker.Snapshot(), nil
}

// Result blocks until the plan reaches a terminal state or the context ends.
func (s *Service) Result(ctx context.Context, handle PlanHandle) (*models.PlanResult, error) {
	s.mu.RLock()
	r, ok := s.runs[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown plan handle %s", handle)
	}

	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
