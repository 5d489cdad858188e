package analyzer

import (
	"reflect"
	"testing"

	"github.com/harrison/dispatch/internal/models"
)

func TestAnalyze_DomainTagging(t *testing.T) {
	a := New()

	tests := []struct {
		name        string
		description string
		wantDomains []models.DomainTag
	}{
		{
			name:        "single domain",
			description: "update the readme with install instructions",
			wantDomains: []models.DomainTag{models.DomainDocumentation},
		},
		{
			name:        "multiple domains sorted",
			description: "fix the login endpoint and its sql query",
			wantDomains: []models.DomainTag{
				models.DomainAuthentication,
				models.DomainBackend,
				models.DomainDatabase,
			},
		},
		{
			name:        "no match falls back to unknown",
			description: "hello there",
			wantDomains: []models.DomainTag{models.DomainUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(models.WorkRequest{Description: tt.description})
			if !reflect.DeepEqual(got.Domains, tt.wantDomains) {
				t.Errorf("domains = %v, want %v", got.Domains, tt.wantDomains)
			}
		})
	}
}

func TestAnalyze_UnanalyzableDefaults(t *testing.T) {
	a := New()
	got := a.Analyze(models.WorkRequest{Description: "hello there"})

	if !got.Defaulted {
		t.Error("expected Defaulted to be set")
	}
	if got.ComplexityScore != 0.5 {
		t.Errorf("complexity = %v, want 0.5", got.ComplexityScore)
	}
	if got.Risk != models.RiskMedium {
		t.Errorf("risk = %s, want medium", got.Risk)
	}
}

func TestScoreComplexity(t *testing.T) {
	a := New()

	tests := []struct {
		name string
		req  models.WorkRequest
		want float64
	}{
		{
			name: "single domain",
			req:  models.WorkRequest{Description: "update the readme"},
			want: 0.15,
		},
		{
			name: "domain breadth is capped",
			req:  models.WorkRequest{Description: "redesign the database schema and api endpoints for performance"},
			want: 0.45,
		},
		{
			name: "multi-phase language adds a bonus",
			req:  models.WorkRequest{Description: "rebuild the billing flow end-to-end"},
			want: 0.45,
		},
		{
			name: "structured requirements doc adds a bonus",
			req: models.WorkRequest{
				Description:     "build the checkout flow",
				RequirementsDoc: "# Checkout\n\n- cart review\n- payment capture\n- confirmation email\n",
			},
			want: 0.40,
		},
		{
			name: "override caps the score",
			req: models.WorkRequest{
				Description:    "redesign the database schema and api endpoints for performance",
				WorkerOverride: "database-engineer",
			},
			want: 0.30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.req)
			if diff := got.ComplexityScore - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("complexity = %v, want %v", got.ComplexityScore, tt.want)
			}
		})
	}
}

func TestDeriveRisk(t *testing.T) {
	a := New()

	tests := []struct {
		name        string
		description string
		want        models.RiskLevel
	}{
		{
			name:        "plain work is low risk",
			description: "update the readme",
			want:        models.RiskLow,
		},
		{
			name:        "sensitive domain forces at least high",
			description: "fix the login flow",
			want:        models.RiskHigh,
		},
		{
			name:        "critical language escalates sensitive work",
			description: "security incident: rotate the leaked auth token",
			want:        models.RiskCritical,
		},
		{
			name:        "critical language without sensitive domain stays non-critical",
			description: "the readme has a critical typo",
			want:        models.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(models.WorkRequest{Description: tt.description})
			if got.Risk != tt.want {
				t.Errorf("risk = %s, want %s", got.Risk, tt.want)
			}
		})
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := New()
	req := models.WorkRequest{Description: "harden the payment api against sql injection"}

	first := a.Analyze(req)
	for i := 0; i < 5; i++ {
		if got := a.Analyze(req); !reflect.DeepEqual(got, first) {
			t.Fatalf("analysis differs between runs: %+v vs %+v", got, first)
		}
	}
}
