package planner

import (
	"reflect"
	"testing"

	"github.com/harrison/dispatch/internal/models"
)

func TestDefaultGatePolicy_Valid(t *testing.T) {
	if err := DefaultGatePolicy().Validate(); err != nil {
		t.Fatalf("default gate policy is invalid: %v", err)
	}
}

func TestGatePolicyValidate_Errors(t *testing.T) {
	bad := GatePolicy{
		models.RiskMedium: {Reviewers: nil, Rule: models.AnyOne},
	}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for gate without reviewers")
	}

	bad = GatePolicy{
		models.RiskMedium: {Reviewers: []string{"code-reviewer"}, Rule: "consensus"},
	}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown approval rule")
	}
}

func TestGateFor(t *testing.T) {
	policy := DefaultGatePolicy()

	tests := []struct {
		name          string
		analysis      models.Analysis
		wantNil       bool
		wantReviewers []string
		wantRule      models.ApprovalRule
	}{
		{
			name:     "low risk has no gate",
			analysis: models.Analysis{Risk: models.RiskLow},
			wantNil:  true,
		},
		{
			name:          "medium risk gets a single code reviewer",
			analysis:      models.Analysis{Risk: models.RiskMedium},
			wantReviewers: []string{"code-reviewer"},
			wantRule:      models.AnyOne,
		},
		{
			name: "high risk sensitive work adds a security reviewer",
			analysis: models.Analysis{
				Risk:    models.RiskHigh,
				Domains: []models.DomainTag{models.DomainAuthentication},
			},
			wantReviewers: []string{"design-reviewer", "code-reviewer", "security-reviewer"},
			wantRule:      models.All,
		},
		{
			name:          "high risk non-sensitive work keeps the base panel",
			analysis:      models.Analysis{Risk: models.RiskHigh, Domains: []models.DomainTag{models.DomainBackend}},
			wantReviewers: []string{"design-reviewer", "code-reviewer"},
			wantRule:      models.All,
		},
		{
			name: "critical gate does not duplicate the security reviewer",
			analysis: models.Analysis{
				Risk:    models.RiskCritical,
				Domains: []models.DomainTag{models.DomainSecurity},
			},
			wantReviewers: []string{"design-reviewer", "code-reviewer", "security-reviewer"},
			wantRule:      models.All,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := policy.gateFor(tt.analysis)
			if tt.wantNil {
				if gate != nil {
					t.Fatalf("expected no gate, got %+v", gate)
				}
				return
			}
			if gate == nil {
				t.Fatal("expected a gate, got nil")
			}
			if !reflect.DeepEqual(gate.Reviewers, tt.wantReviewers) {
				t.Errorf("reviewers = %v, want %v", gate.Reviewers, tt.wantReviewers)
			}
			if gate.Rule != tt.wantRule {
				t.Errorf("rule = %s, want %s", gate.Rule, tt.wantRule)
			}
		})
	}
}

func TestGateFor_DoesNotMutatePolicy(t *testing.T) {
	policy := DefaultGatePolicy()
	analysis := models.Analysis{
		Risk:    models.RiskHigh,
		Domains: []models.DomainTag{models.DomainPayments},
	}

	_ = policy.gateFor(analysis)
	if got := policy[models.RiskHigh].Reviewers; len(got) != 2 {
		t.Errorf("gateFor mutated the shared policy: %v", got)
	}
}

func TestHasOrderingDependency(t *testing.T) {
	impl := candidate("a", models.RoleImplementer, 0.9)
	spec := candidate("b", models.RoleSpecialist, 0.8)
	tester := candidate("c", models.RoleTester, 0.7)

	if hasOrderingDependency([]models.Candidate{impl, spec}) {
		t.Error("implementer and specialist share a rank")
	}
	if !hasOrderingDependency([]models.Candidate{impl, tester}) {
		t.Error("tester after implementer is an ordering dependency")
	}
	if hasOrderingDependency([]models.Candidate{impl}) {
		t.Error("single candidate has no ordering dependency")
	}
}
