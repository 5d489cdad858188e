package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/harrison/dispatch/internal/models"
)

func candidate(name string, role models.WorkerRole, confidence float64) models.Candidate {
	return models.Candidate{
		Worker:     models.Worker{Name: name, Role: role},
		Confidence: confidence,
	}
}

func TestPlan_NoCandidates(t *testing.T) {
	p := New()
	_, err := p.Plan(models.WorkRequest{Description: "anything"}, models.Analysis{}, nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestPlan_SimpleShape(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "fix the typo in the README"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainDocumentation},
		ComplexityScore: 0.15,
		Risk:            models.RiskLow,
	}
	candidates := []models.Candidate{
		candidate("technical-writer", models.RoleWriter, 0.8),
		candidate("backend-engineer", models.RoleImplementer, 0.3),
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Waves) != 1 {
		t.Fatalf("expected 1 wave, got %d", len(plan.Waves))
	}
	wave := plan.Waves[0]
	if len(wave.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(wave.Tasks))
	}
	if wave.Tasks[0].Worker != "technical-writer" {
		t.Errorf("task worker = %s, want technical-writer", wave.Tasks[0].Worker)
	}
	if wave.Gate != nil {
		t.Errorf("low risk should have no gate, got %+v", wave.Gate)
	}
}

func TestPlan_ModerateParallelSupport(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "add request logging to the api"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainAPI, models.DomainBackend},
		ComplexityScore: 0.5,
		Risk:            models.RiskMedium,
	}
	candidates := []models.Candidate{
		candidate("backend-engineer", models.RoleImplementer, 0.9),
		candidate("frontend-engineer", models.RoleImplementer, 0.75),
		candidate("database-engineer", models.RoleImplementer, 0.5), // outside the support band
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Waves) != 1 {
		t.Fatalf("expected 1 wave, got %d", len(plan.Waves))
	}
	wave := plan.Waves[0]
	if len(wave.Tasks) != 2 {
		t.Fatalf("expected 2 tasks (support band), got %d", len(wave.Tasks))
	}
	if wave.Mode != models.Parallel {
		t.Errorf("same-rank workers should run in parallel, got %s", wave.Mode)
	}
	if wave.Gate == nil || wave.Gate.Rule != models.AnyOne {
		t.Errorf("medium risk gate = %+v, want AnyOne", wave.Gate)
	}
}

func TestPlan_ModerateOrderingDependencyRunsSequential(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "migrate the user table and verify"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainDatabase, models.DomainTesting},
		ComplexityScore: 0.45,
		Risk:            models.RiskLow,
	}
	candidates := []models.Candidate{
		candidate("database-engineer", models.RoleImplementer, 0.85),
		candidate("qa-engineer", models.RoleTester, 0.7),
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wave := plan.Waves[0]
	if wave.Mode != models.Sequential {
		t.Fatalf("tester after implementer should be sequential, got %s", wave.Mode)
	}
	if got := wave.Tasks[1].DependsOn; len(got) != 1 || got[0] != wave.Tasks[0].ID {
		t.Errorf("second task should depend on the first, got %v", got)
	}
}

func TestPlan_StagedShape(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "rebuild the billing system end-to-end"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainPayments, models.DomainBackend},
		ComplexityScore: 0.8,
		Risk:            models.RiskHigh,
	}
	candidates := []models.Candidate{
		candidate("system-architect", models.RoleArchitect, 0.9),
		candidate("backend-engineer", models.RoleImplementer, 0.85),
		candidate("security-engineer", models.RoleSpecialist, 0.7),
		candidate("qa-engineer", models.RoleTester, 0.6),
		candidate("technical-writer", models.RoleWriter, 0.5),
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Waves) != 4 {
		t.Fatalf("expected 4 staged waves, got %d", len(plan.Waves))
	}
	wantNames := []string{"Foundation", "Core", "Enhancement", "Polish"}
	for i, name := range wantNames {
		if plan.Waves[i].Name != name {
			t.Errorf("wave %d = %s, want %s", i, plan.Waves[i].Name, name)
		}
	}

	// Polish holds tester and writer in parallel.
	polish := plan.Waves[3]
	if len(polish.Tasks) != 2 || polish.Mode != models.Parallel {
		t.Errorf("polish wave = %d task(s) %s, want 2 tasks parallel", len(polish.Tasks), polish.Mode)
	}

	// Each later wave depends on every task of the previous wave.
	core := plan.Waves[1]
	foundation := plan.Waves[0]
	if got := core.Tasks[0].DependsOn; len(got) != 1 || got[0] != foundation.Tasks[0].ID {
		t.Errorf("core should depend on foundation, got %v", got)
	}

	// High-risk sensitive work gates every wave with design, code, and
	// security reviewers under All.
	for _, wave := range plan.Waves {
		if wave.Gate == nil {
			t.Fatalf("wave %s has no gate", wave.Name)
		}
		if wave.Gate.Rule != models.All {
			t.Errorf("wave %s gate rule = %s, want all", wave.Name, wave.Gate.Rule)
		}
		want := []string{"design-reviewer", "code-reviewer", "security-reviewer"}
		if !reflect.DeepEqual(wave.Gate.Reviewers, want) {
			t.Errorf("wave %s reviewers = %v, want %v", wave.Name, wave.Gate.Reviewers, want)
		}
	}
}

func TestPlan_StagedCollapsesEmptyStages(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "overhaul the data pipeline"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainInfrastructure},
		ComplexityScore: 0.75,
		Risk:            models.RiskLow,
	}
	// No architect, no specialist: Foundation and Enhancement collapse.
	candidates := []models.Candidate{
		candidate("devops-engineer", models.RoleImplementer, 0.9),
		candidate("qa-engineer", models.RoleTester, 0.6),
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Waves) != 2 {
		t.Fatalf("expected 2 waves after collapse, got %d", len(plan.Waves))
	}
	if plan.Waves[0].Name != "Core" || plan.Waves[1].Name != "Polish" {
		t.Errorf("waves = %s, %s; want Core, Polish", plan.Waves[0].Name, plan.Waves[1].Name)
	}
}

func TestPlan_StagedFallsBackWhenNoStageMatches(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "review everything"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainDesign},
		ComplexityScore: 0.9,
		Risk:            models.RiskLow,
	}
	// Reviewers match no stage in the template.
	candidates := []models.Candidate{
		candidate("code-reviewer", models.RoleReviewer, 0.8),
	}

	plan, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Waves) != 1 || len(plan.Waves[0].Tasks) != 1 {
		t.Fatalf("expected moderate fallback with 1 wave / 1 task, got %+v", plan.Waves)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	p := New()
	req := models.WorkRequest{Description: "rebuild the billing system end-to-end"}
	analysis := models.Analysis{
		Domains:         []models.DomainTag{models.DomainPayments},
		ComplexityScore: 0.8,
		Risk:            models.RiskHigh,
	}
	candidates := []models.Candidate{
		candidate("system-architect", models.RoleArchitect, 0.9),
		candidate("backend-engineer", models.RoleImplementer, 0.85),
		candidate("qa-engineer", models.RoleTester, 0.6),
	}

	first, err := p.Plan(req, analysis, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := p.Plan(req, analysis, candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("plans differ between runs")
		}
	}
}

func TestPlanName_Truncation(t *testing.T) {
	long := "this is a very long request description that keeps going well past the limit"
	name := planName(long)
	if len(name) > 63 {
		t.Errorf("plan name too long: %d chars", len(name))
	}
	if planName("   ") != "untitled request" {
		t.Errorf("blank description should yield untitled request")
	}
}
