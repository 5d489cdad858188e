package models

import (
	"strings"
	"testing"
)

func validPlan() *Plan {
	return &Plan{
		Name: "test plan",
		Waves: []Wave{
			{
				Name: "Wave 1",
				Mode: Sequential,
				Tasks: []Task{
					{ID: "1", Worker: "backend-engineer", Description: "do the thing"},
					{ID: "2", Worker: "qa-engineer", Description: "verify the thing", DependsOn: []string{"1"}},
				},
			},
			{
				Name: "Wave 2",
				Mode: Parallel,
				Tasks: []Task{
					{ID: "3", Worker: "technical-writer", Description: "document the thing", DependsOn: []string{"1", "2"}},
				},
			},
		},
	}
}

func TestPlanValidate_ValidPlan(t *testing.T) {
	if err := validPlan().Validate(); err != nil {
		t.Fatalf("expected valid plan, got error: %v", err)
	}
}

func TestPlanValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Plan)
		wantErr string
	}{
		{
			name:    "no waves",
			mutate:  func(p *Plan) { p.Waves = nil },
			wantErr: "no waves",
		},
		{
			name:    "empty wave",
			mutate:  func(p *Plan) { p.Waves[1].Tasks = nil },
			wantErr: "has no tasks",
		},
		{
			name:    "unknown mode",
			mutate:  func(p *Plan) { p.Waves[0].Mode = "burst" },
			wantErr: "unknown concurrency mode",
		},
		{
			name:    "empty task ID",
			mutate:  func(p *Plan) { p.Waves[0].Tasks[0].ID = "" },
			wantErr: "empty ID",
		},
		{
			name:    "unassigned worker",
			mutate:  func(p *Plan) { p.Waves[0].Tasks[1].Worker = "" },
			wantErr: "no assigned worker",
		},
		{
			name:    "duplicate task ID",
			mutate:  func(p *Plan) { p.Waves[1].Tasks[0].ID = "1" },
			wantErr: "duplicate task ID",
		},
		{
			name:    "dependency on missing task",
			mutate:  func(p *Plan) { p.Waves[1].Tasks[0].DependsOn = []string{"99"} },
			wantErr: "non-existent task",
		},
		{
			name:    "self dependency",
			mutate:  func(p *Plan) { p.Waves[0].Tasks[0].DependsOn = []string{"1"} },
			wantErr: "depends on itself",
		},
		{
			name:    "forward dependency",
			mutate:  func(p *Plan) { p.Waves[0].Tasks[0].DependsOn = []string{"3"} },
			wantErr: "later wave",
		},
		{
			name: "same-wave dependency in parallel wave",
			mutate: func(p *Plan) {
				p.Waves[1].Tasks = append(p.Waves[1].Tasks, Task{
					ID: "4", Worker: "qa-engineer", Description: "check", DependsOn: []string{"3"},
				})
			},
			wantErr: "parallel wave",
		},
		{
			name: "backwards declaration in sequential wave",
			mutate: func(p *Plan) {
				p.Waves[0].Tasks[0].DependsOn = []string{"2"}
				p.Waves[0].Tasks[1].DependsOn = nil
			},
			wantErr: "declared later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestPlanTaskCount(t *testing.T) {
	if got := validPlan().TaskCount(); got != 3 {
		t.Errorf("expected 3 tasks, got %d", got)
	}
}
