package planner

import "github.com/harrison/dispatch/internal/models"

// Stage defines one step of the multi-wave staging template: a name and the
// worker roles eligible for it. The template is configuration, so the
// planner's staging logic stays a pure function over it.
type Stage struct {
	Name  string              `yaml:"name"`
	Roles []models.WorkerRole `yaml:"roles"`
}

// StageTemplate is the ordered list of stages a complex plan follows.
// Stages with no matching candidates collapse rather than producing no-op
// tasks.
type StageTemplate []Stage

// DefaultStageTemplate is the fixed staging template for complex work:
// Foundation (design/planning), Core (primary implementers), Enhancement
// (cross-cutting specialists), Polish (testing, documentation).
func DefaultStageTemplate() StageTemplate {
	return StageTemplate{
		{Name: "Foundation", Roles: []models.WorkerRole{models.RoleArchitect}},
		{Name: "Core", Roles: []models.WorkerRole{models.RoleImplementer}},
		{Name: "Enhancement", Roles: []models.WorkerRole{models.RoleSpecialist}},
		{Name: "Polish", Roles: []models.WorkerRole{models.RoleTester, models.RoleWriter}},
	}
}

// roleOrder ranks roles by their natural ordering in a delivery flow.
// Workers whose roles span more than one rank have an ordering dependency
// and run sequentially in moderate-complexity plans.
var roleOrder = map[models.WorkerRole]int{
	models.RoleArchitect:   0,
	models.RoleImplementer: 1,
	models.RoleSpecialist:  1,
	models.RoleReviewer:    2,
	models.RoleTester:      2,
	models.RoleWriter:      2,
}

// hasOrderingDependency reports whether the selected workers have a natural
// ordering (e.g. testers after implementers).
func hasOrderingDependency(candidates []models.Candidate) bool {
	if len(candidates) < 2 {
		return false
	}
	first := roleOrder[candidates[0].Worker.Role]
	for _, c := range candidates[1:] {
		if roleOrder[c.Worker.Role] != first {
			return true
		}
	}
	return false
}
