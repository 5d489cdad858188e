package models

import (
	"errors"
	"fmt"
)

// WorkerRole groups workers by the kind of work they perform. The planner's
// staging template filters candidates by role when building multi-wave plans.
type WorkerRole string

// Worker roles recognized by the staging template.
const (
	RoleArchitect   WorkerRole = "architect"   // Design and planning
	RoleImplementer WorkerRole = "implementer" // Primary implementation
	RoleSpecialist  WorkerRole = "specialist"  // Cross-cutting concerns (security, performance)
	RoleReviewer    WorkerRole = "reviewer"    // Quality gate reviews
	RoleTester      WorkerRole = "tester"      // Test authoring and verification
	RoleWriter      WorkerRole = "writer"      // Documentation
)

var validRoles = map[WorkerRole]bool{
	RoleArchitect:   true,
	RoleImplementer: true,
	RoleSpecialist:  true,
	RoleReviewer:    true,
	RoleTester:      true,
	RoleWriter:      true,
}

// ValidWorkerRole reports whether the given role is recognized.
func ValidWorkerRole(r WorkerRole) bool {
	return validRoles[r]
}

// Worker is a capability profile for a specialist collaborator.
// Worker profiles are static configuration loaded at process start and
// read-only thereafter.
type Worker struct {
	Name          string                `yaml:"name"`
	Role          WorkerRole            `yaml:"role"`
	DomainWeights map[DomainTag]float64 `yaml:"domains"`
}

// Validate checks that the worker profile is well formed: a name, a known
// role, and domain weights within [0,1].
func (w *Worker) Validate() error {
	if w.Name == "" {
		return errors.New("worker name is required")
	}
	if !ValidWorkerRole(w.Role) {
		return fmt.Errorf("worker %s: unknown role %q", w.Name, w.Role)
	}
	for tag, weight := range w.DomainWeights {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("worker %s: domain %s weight %v out of range [0,1]", w.Name, tag, weight)
		}
	}
	return nil
}

// Candidate pairs a worker with its confidence for a specific analysis.
// Candidates are ephemeral and recomputed per request.
type Candidate struct {
	Worker     Worker
	Confidence float64
}
