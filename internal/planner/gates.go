package planner

import (
	"fmt"

	"github.com/harrison/dispatch/internal/models"
)

// GatePolicy maps risk levels to gate specifications. The mapping is
// external configuration loaded once at process start and read-only for the
// process lifetime.
type GatePolicy map[models.RiskLevel]models.GateSpec

// DefaultGatePolicy returns the built-in risk-to-gate mapping:
// Low has no gate, Medium a single code reviewer, High a design and code
// reviewer panel under All, Critical the full panel under All with an
// explicit escalation path.
func DefaultGatePolicy() GatePolicy {
	return GatePolicy{
		models.RiskMedium: {
			Reviewers:  []string{"code-reviewer"},
			Rule:       models.AnyOne,
			MaxRetries: 2,
		},
		models.RiskHigh: {
			Reviewers:  []string{"design-reviewer", "code-reviewer"},
			Rule:       models.All,
			MaxRetries: 2,
		},
		models.RiskCritical: {
			Reviewers:  []string{"design-reviewer", "code-reviewer", "security-reviewer"},
			Rule:       models.All,
			MaxRetries: 1,
			Escalate:   true,
		},
	}
}

// Validate checks that every gate in the policy has reviewers and a known
// approval rule.
func (p GatePolicy) Validate() error {
	for risk, gate := range p {
		if len(gate.Reviewers) == 0 {
			return fmt.Errorf("gate policy for %s risk has no reviewers", risk)
		}
		switch gate.Rule {
		case models.AnyOne, models.All, models.Majority:
		default:
			return fmt.Errorf("gate policy for %s risk: unknown approval rule %q", risk, gate.Rule)
		}
		if gate.MaxRetries < 0 {
			return fmt.Errorf("gate policy for %s risk: negative retry budget", risk)
		}
	}
	return nil
}

// gateFor resolves the gate for a wave given the analysis. Sensitive-domain
// work always carries a security reviewer on High and Critical gates.
func (p GatePolicy) gateFor(analysis models.Analysis) *models.GateSpec {
	spec, ok := p[analysis.Risk]
	if !ok {
		return nil
	}

	gate := models.GateSpec{
		Reviewers:  append([]string{}, spec.Reviewers...),
		Rule:       spec.Rule,
		MaxRetries: spec.MaxRetries,
		Escalate:   spec.Escalate,
	}

	if analysis.HasSensitiveDomain() && analysis.Risk.AtLeast(models.RiskHigh) {
		if !contains(gate.Reviewers, "security-reviewer") {
			gate.Reviewers = append(gate.Reviewers, "security-reviewer")
		}
	}

	return &gate
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
