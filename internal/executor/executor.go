// Package executor runs delegation plans: waves in order, tasks within a
// wave per the wave's concurrency mode, quality gates between waves with a
// bounded revision loop. The plan itself is immutable during execution; all
// mutable state lives in TaskResult records and the ProgressTracker.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/worker"
)

// WorkerInvoker dispatches a single task to its assigned worker.
type WorkerInvoker interface {
	Invoke(ctx context.Context, task models.Task) (*worker.InvocationResult, error)
}

// Logger receives execution progress events. A nil Logger disables logging.
type Logger interface {
	LogPlanStart(plan *models.Plan)
	LogWaveStart(wave models.Wave, attempt int)
	LogWaveComplete(wave models.Wave, duration time.Duration, results []models.TaskResult)
	LogTaskStart(task models.Task)
	LogTaskResult(result models.TaskResult)
	LogGateVerdicts(wave models.Wave, verdicts []models.Verdict, approved bool)
	LogSummary(result *models.PlanResult)
}

// AttemptRecorder persists wave pass history. A nil recorder disables
// persistence; recording failures never abort execution.
type AttemptRecorder interface {
	RecordAttempt(plan string, wr models.WaveResult) error
}

// SnapshotSink receives progress snapshots after every state transition.
type SnapshotSink interface {
	WriteSnapshot(snapshot ProgressSnapshot) error
}

// Config holds execution tunables.
type Config struct {
	WorkerTimeout  time.Duration // Per-invocation timeout, 0 = no timeout
	InvokeRetries  int           // Extra invocation attempts after a failure
	MaxConcurrency int           // Parallel wave concurrency cap, 0 = unbounded
}

// Orchestrator executes plans wave by wave.
type Orchestrator struct {
	invoker  WorkerInvoker
	gate     *GateEnforcer
	logger   Logger
	cfg      Config
	recorder AttemptRecorder
	sink     SnapshotSink
}

// NewOrchestrator creates an Orchestrator. The invoker is required; gate is
// required only for plans with gated waves.
func NewOrchestrator(invoker WorkerInvoker, gate *GateEnforcer, logger Logger, cfg Config) *Orchestrator {
	return &Orchestrator{
		invoker: invoker,
		gate:    gate,
		logger:  logger,
		cfg:     cfg,
	}
}

// SetRecorder attaches a wave pass history recorder.
func (o *Orchestrator) SetRecorder(recorder AttemptRecorder) {
	o.recorder = recorder
}

// SetSnapshotSink attaches a progress snapshot sink.
func (o *Orchestrator) SetSnapshotSink(sink SnapshotSink) {
	o.sink = sink
}

// Execute runs the plan to a terminal state. Waves run strictly in order; a
// wave only starts after the previous wave succeeded and its gate approved.
// The returned PlanResult always carries the full wave pass history, even on
// abort. Execute returns an error only for invalid input; execution failures
// are reported through PlanResult.Cause.
func (o *Orchestrator) Execute(ctx context.Context, plan *models.Plan, tracker *ProgressTracker) (*models.PlanResult, error) {
	if o.invoker == nil {
		return nil, errors.New("orchestrator has no worker invoker")
	}
	if err := plan.Validate(); err != nil {
		return nil, &WaveError{Wave: plan.Name, Phase: PhasePlan, Err: err}
	}
	if tracker == nil {
		tracker = NewProgressTracker(plan)
	}

	start := time.Now()
	result := &models.PlanResult{State: models.StateRunning}
	tracker.SetState(models.StateRunning)
	o.snapshot(tracker)

	if o.logger != nil {
		o.logger.LogPlanStart(plan)
	}

	// Completed tasks across all approved waves, keyed by task ID. Outputs
	// of the final wave become the plan's deliverable.
	completed := make(map[string]models.TaskResult)
	var finalWave []models.TaskResult

	for _, wave := range plan.Waves {
		tracker.SetWave(wave.Name)

		passed, waveErr := o.runWaveWithGate(ctx, plan, wave, tracker, completed, result)
		if waveErr != nil {
			return o.abort(result, tracker, waveErr, start), nil
		}
		for _, r := range passed {
			completed[r.TaskID] = r
		}
		finalWave = passed
	}

	result.State = models.StateDelivered
	result.Outputs = make(map[string]string, len(finalWave))
	for _, r := range finalWave {
		result.Outputs[r.TaskID] = r.Output
	}
	result.Duration = time.Since(start)
	tracker.SetState(models.StateDelivered)
	o.snapshot(tracker)

	if o.logger != nil {
		o.logger.LogSummary(result)
	}
	return result, nil
}

// runWaveWithGate runs one wave through its revision loop: execute the
// tasks, check the gate, and on a non-terminal rejection re-run the wave
// with reviewer feedback appended to each task, up to the gate's retry
// budget. Returns the task results of the approved pass.
func (o *Orchestrator) runWaveWithGate(ctx context.Context, plan *models.Plan, wave models.Wave, tracker *ProgressTracker, completed map[string]models.TaskResult, result *models.PlanResult) ([]models.TaskResult, error) {
	feedback := ""
	for attempt := 1; ; attempt++ {
		if o.logger != nil {
			o.logger.LogWaveStart(wave, attempt)
		}

		passStart := time.Now()
		tasks := revisedTasks(wave.Tasks, feedback)
		results, runErr := o.runWave(ctx, wave, tasks, tracker, completed)

		wr := models.WaveResult{
			Wave:     wave.Name,
			Attempt:  attempt,
			Results:  results,
			Duration: time.Since(passStart),
		}

		if o.logger != nil {
			o.logger.LogWaveComplete(wave, wr.Duration, results)
		}

		if runErr != nil {
			result.Waves = append(result.Waves, wr)
			o.record(plan.Name, wr)
			return nil, &WaveError{Wave: wave.Name, Phase: PhaseTask, Err: runErr}
		}

		if wave.Gate == nil {
			wr.Approved = true
			result.Waves = append(result.Waves, wr)
			o.record(plan.Name, wr)
			return results, nil
		}

		tracker.SetState(models.StateGateCheck)
		o.snapshot(tracker)

		rc := worker.ReviewContext{
			Wave:        wave.Name,
			Risk:        plan.Analysis.Risk,
			Description: plan.Name,
		}
		outcome, gateErr := o.gateCheck(ctx, *wave.Gate, plan.Analysis.Risk, rc, results)
		wr.Verdicts = outcome.Verdicts
		wr.Approved = outcome.Approved
		result.Waves = append(result.Waves, wr)
		o.record(plan.Name, wr)

		if o.logger != nil {
			o.logger.LogGateVerdicts(wave, outcome.Verdicts, outcome.Approved)
		}

		if gateErr != nil {
			return nil, &WaveError{Wave: wave.Name, Phase: PhaseGate, Err: gateErr}
		}
		if outcome.Approved {
			tracker.SetState(models.StateRunning)
			o.snapshot(tracker)
			return results, nil
		}

		rejection := &GateRejectionError{
			Wave:     wave.Name,
			Feedback: outcome.Feedback,
			Critical: outcome.Terminal,
			Escalate: wave.Gate.Escalate,
		}
		// Terminal rejections bypass the retry budget entirely.
		if outcome.Terminal {
			markRejected(results, tracker)
			return nil, &WaveError{Wave: wave.Name, Phase: PhaseGate, Err: rejection}
		}
		if attempt > wave.Gate.MaxRetries {
			markRejected(results, tracker)
			return nil, &WaveError{Wave: wave.Name, Phase: PhaseGate, Err: rejection}
		}

		// Revise: same workers, same tasks, reviewer feedback appended.
		feedback = outcome.Feedback
		tracker.SetState(models.StateRunning)
		for _, t := range wave.Tasks {
			tracker.SetTask(t.ID, models.StatusPending)
		}
		o.snapshot(tracker)
	}
}

func (o *Orchestrator) gateCheck(ctx context.Context, gate models.GateSpec, risk models.RiskLevel, rc worker.ReviewContext, results []models.TaskResult) (GateOutcome, error) {
	if o.gate == nil {
		return GateOutcome{}, errors.New("plan requires a quality gate but no gate enforcer is configured")
	}
	return o.gate.Review(ctx, gate, risk, rc, results)
}

// runWave executes one pass over a wave's tasks per the wave's concurrency
// mode. Results are returned in task declaration order.
func (o *Orchestrator) runWave(ctx context.Context, wave models.Wave, tasks []models.Task, tracker *ProgressTracker, completed map[string]models.TaskResult) ([]models.TaskResult, error) {
	if wave.Mode == models.Parallel {
		return o.runParallel(ctx, wave, tasks, tracker)
	}
	return o.runSequential(ctx, tasks, tracker, completed)
}

// runSequential dispatches tasks one at a time in declaration order and
// aborts the wave on the first failure, leaving later tasks untouched.
func (o *Orchestrator) runSequential(ctx context.Context, tasks []models.Task, tracker *ProgressTracker, completed map[string]models.TaskResult) ([]models.TaskResult, error) {
	results := make([]models.TaskResult, 0, len(tasks))
	local := make(map[string]models.TaskResult)

	for _, task := range tasks {
		if err := depsSatisfied(task, completed, local); err != nil {
			return results, err
		}
		r := o.runTask(ctx, task, tracker)
		results = append(results, r)
		local[r.TaskID] = r
		if !r.Succeeded() {
			return results, r.Err
		}
	}
	return results, nil
}

// runParallel dispatches all tasks concurrently, bounded by the wave's (or
// the orchestrator's) concurrency cap, and awaits every task before
// reporting: a failed sibling never cancels in-flight work mid-wave.
func (o *Orchestrator) runParallel(ctx context.Context, wave models.Wave, tasks []models.Task, tracker *ProgressTracker) ([]models.TaskResult, error) {
	limit := wave.MaxConcurrency
	if limit <= 0 {
		limit = o.cfg.MaxConcurrency
	}
	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	results := make([]models.TaskResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task models.Task) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			results[i] = o.runTask(ctx, task, tracker)
		}(i, task)
	}
	wg.Wait()

	for _, r := range results {
		if !r.Succeeded() {
			return results, r.Err
		}
	}
	return results, nil
}

// runTask invokes the assigned worker with bounded retries. Only transient
// failures (timeouts, non-zero exits) are retried; parent context
// cancellation stops immediately.
func (o *Orchestrator) runTask(ctx context.Context, task models.Task, tracker *ProgressTracker) models.TaskResult {
	tracker.SetTask(task.ID, models.StatusRunning)
	o.snapshot(tracker)
	if o.logger != nil {
		o.logger.LogTaskStart(task)
	}

	start := time.Now()
	result := models.TaskResult{TaskID: task.ID, Worker: task.Worker}

	maxAttempts := o.cfg.InvokeRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		output, err := o.invokeOnce(ctx, task)
		if err == nil {
			result.Status = models.StatusSucceeded
			result.Output = output
			break
		}
		result.Err = err
		result.Status = models.StatusFailed

		// The parent context ending means shutdown, not a flaky worker.
		if ctx.Err() != nil {
			break
		}
	}

	result.Duration = time.Since(start)
	tracker.SetTask(task.ID, result.Status)
	o.snapshot(tracker)
	if o.logger != nil {
		o.logger.LogTaskResult(result)
	}
	return result
}

// invokeOnce performs a single worker invocation under the per-task timeout.
func (o *Orchestrator) invokeOnce(ctx context.Context, task models.Task) (string, error) {
	ictx := ctx
	cancel := func() {}
	if o.cfg.WorkerTimeout > 0 {
		ictx, cancel = context.WithTimeout(ctx, o.cfg.WorkerTimeout)
	}
	defer cancel()

	inv, err := o.invoker.Invoke(ictx, task)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", NewTimeoutError(task.ID, o.cfg.WorkerTimeout)
		}
		return "", NewTaskError(task.ID, "worker invocation failed", err)
	}
	if inv.Err != nil {
		return "", NewTaskError(task.ID, "worker invocation failed", inv.Err)
	}
	if inv.ExitCode != 0 {
		return "", NewTaskError(task.ID, fmt.Sprintf("worker exited with code %d", inv.ExitCode), nil)
	}

	content, cliErr := worker.ParseOutput(inv.Output)
	if content == "" && cliErr != "" {
		return "", NewTaskError(task.ID, fmt.Sprintf("worker returned error: %s", cliErr), nil)
	}
	return content, nil
}

func (o *Orchestrator) abort(result *models.PlanResult, tracker *ProgressTracker, cause error, start time.Time) *models.PlanResult {
	result.State = models.StateAborted
	result.Cause = cause
	result.Escalated = IsEscalatedRejection(cause)
	result.Duration = time.Since(start)
	tracker.SetState(models.StateAborted)
	o.snapshot(tracker)
	if o.logger != nil {
		o.logger.LogSummary(result)
	}
	return result
}

func (o *Orchestrator) record(plan string, wr models.WaveResult) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordAttempt(plan, wr); err != nil && o.logger != nil {
		if cl, ok := o.logger.(interface{ LogWarn(string) }); ok {
			cl.LogWarn(fmt.Sprintf("failed to record wave attempt: %v", err))
		}
	}
}

func (o *Orchestrator) snapshot(tracker *ProgressTracker) {
	if o.sink == nil {
		return
	}
	// Best effort: a broken snapshot file never stops the plan.
	_ = o.sink.WriteSnapshot(tracker.Snapshot())
}

// revisedTasks returns the wave's tasks with reviewer feedback appended to
// each description. An empty feedback returns the tasks unchanged.
func revisedTasks(tasks []models.Task, feedback string) []models.Task {
	if feedback == "" {
		return tasks
	}
	revised := make([]models.Task, len(tasks))
	for i, t := range tasks {
		t.Description = fmt.Sprintf("%s\n\nReviewer feedback to address:\n%s", t.Description, feedback)
		revised[i] = t
	}
	return revised
}

// depsSatisfied checks that every declared dependency reached a successful
// terminal state, looking first at earlier waves then at this pass.
func depsSatisfied(task models.Task, completed, local map[string]models.TaskResult) error {
	for _, dep := range task.DependsOn {
		r, ok := completed[dep]
		if !ok {
			r, ok = local[dep]
		}
		if !ok || !r.Succeeded() {
			return NewTaskError(task.ID, fmt.Sprintf("dependency %s did not succeed", dep), nil)
		}
	}
	return nil
}

func markRejected(results []models.TaskResult, tracker *ProgressTracker) {
	for i := range results {
		results[i].Status = models.StatusRejected
		tracker.SetTask(results[i].TaskID, models.StatusRejected)
	}
}
