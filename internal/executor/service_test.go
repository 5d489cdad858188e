package executor

import (
	"context"
	"testing"
	"time"

	"github.com/harrison/dispatch/internal/analyzer"
	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/planner"
	"github.com/harrison/dispatch/internal/registry"
)

func testService(t *testing.T) *Service {
	t.Helper()
	reg, err := registry.New(registry.DefaultRoster())
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	orch := NewOrchestrator(newStubInvoker(), NewGateEnforcer(&stubReviewer{}), nil, Config{})
	return NewService(analyzer.New(), reg, planner.New(), orch)
}

func TestService_SubmitAndResult(t *testing.T) {
	svc := testService(t)

	handle, err := svc.Submit(context.Background(), models.WorkRequest{
		Description: "update the readme with install instructions",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := svc.Result(ctx, handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Delivered() {
		t.Errorf("state = %s, want delivered (cause: %v)", result.State, result.Cause)
	}

	snap, err := svc.Status(handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State != models.StateDelivered {
		t.Errorf("snapshot state = %s, want delivered", snap.State)
	}
}

func TestService_UnknownHandle(t *testing.T) {
	svc := testService(t)
	if _, err := svc.Status("nope"); err == nil {
		t.Error("expected error for unknown handle in Status")
	}
	if _, err := svc.Result(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown handle in Result")
	}
}

func TestService_RejectsUnknownOverrideWorker(t *testing.T) {
	svc := testService(t)
	_, err := svc.Submit(context.Background(), models.WorkRequest{
		Description:    "anything at all",
		WorkerOverride: "not-a-real-worker",
	})
	if err == nil {
		t.Fatal("expected error for override naming an unknown worker")
	}
}

func TestService_BuildPlanOverrideSingleTask(t *testing.T) {
	svc := testService(t)
	plan, candidates, err := svc.BuildPlan(models.WorkRequest{
		Description:    "tune the slow queries in the orders database",
		WorkerOverride: "database-engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Confidence != 1.0 {
		t.Fatalf("override candidates = %+v, want single (database-engineer, 1.0)", candidates)
	}
	if plan.TaskCount() != 1 {
		t.Errorf("task count = %d, want 1", plan.TaskCount())
	}
	if plan.Waves[0].Tasks[0].Worker != "database-engineer" {
		t.Errorf("worker = %s, want database-engineer", plan.Waves[0].Tasks[0].Worker)
	}
}
