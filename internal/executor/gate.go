package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/worker"
)

// ReviewerInvoker obtains a single reviewer's verdict on a wave's outputs.
type ReviewerInvoker interface {
	Review(ctx context.Context, reviewer string, output string, rc worker.ReviewContext) (models.Verdict, error)
}

// GateOutcome is the combined result of a quality gate check.
type GateOutcome struct {
	Approved bool
	Terminal bool // Critical-risk rejection: stops the plan, bypasses retries
	Verdicts []models.Verdict
	Feedback string // Combined notes from non-approving reviewers
}

// GateEnforcer dispatches wave outputs to the gate's reviewers and combines
// their verdicts per the gate's approval rule. Reviewers are independent,
// so reviews run in parallel.
type GateEnforcer struct {
	reviewer ReviewerInvoker
}

// NewGateEnforcer creates a GateEnforcer using the given reviewer invoker.
func NewGateEnforcer(reviewer ReviewerInvoker) *GateEnforcer {
	return &GateEnforcer{reviewer: reviewer}
}

type reviewOutcome struct {
	verdict models.Verdict
	err     error
}

// Review runs the gate check for a completed wave. AnyOne short-circuits on
// the first approval; All and Majority await every reviewer. An explicit
// Reject against Critical-risk work is terminal regardless of the rule.
func (g *GateEnforcer) Review(ctx context.Context, gate models.GateSpec, risk models.RiskLevel, rc worker.ReviewContext, results []models.TaskResult) (GateOutcome, error) {
	if len(gate.Reviewers) == 0 {
		return GateOutcome{Approved: true}, nil
	}

	combined := combineOutputs(results)

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan reviewOutcome, len(gate.Reviewers))
	for _, name := range gate.Reviewers {
		go func(name string) {
			v, err := g.reviewer.Review(rctx, name, combined, rc)
			outcomes <- reviewOutcome{verdict: v, err: err}
		}(name)
	}

	var verdicts []models.Verdict
	var firstErr error
	for i := 0; i < len(gate.Reviewers); i++ {
		oc := <-outcomes
		if oc.err != nil {
			if firstErr == nil {
				firstErr = oc.err
			}
			continue
		}
		verdicts = append(verdicts, oc.verdict)

		// AnyOne succeeds on the first approval; remaining reviews are
		// cancelled and their verdicts discarded.
		if gate.Rule == models.AnyOne && oc.verdict.Decision == models.Approve {
			if risk != models.RiskCritical {
				cancel()
				return GateOutcome{Approved: true, Verdicts: verdicts}, nil
			}
		}
	}

	outcome := combineVerdicts(gate.Rule, risk, len(gate.Reviewers), verdicts)
	if firstErr != nil && !outcome.Terminal && !decidedDespiteMissing(gate.Rule, risk, verdicts, len(gate.Reviewers)) {
		// Failed reviewer invocations left the gate undecidable: the missing
		// verdicts could change the outcome, so neither approve nor revise.
		return outcome, fmt.Errorf("gate review incomplete: %w", firstErr)
	}
	return outcome, nil
}

// decidedDespiteMissing reports whether the collected verdicts fix the gate
// outcome no matter what the unreachable reviewers would have said.
func decidedDespiteMissing(rule models.ApprovalRule, risk models.RiskLevel, verdicts []models.Verdict, expected int) bool {
	missing := expected - len(verdicts)
	if missing == 0 {
		return true
	}
	// A missing verdict against Critical work could have been a terminal
	// rejection, so Critical gates are never decidable on partial verdicts.
	if risk == models.RiskCritical {
		return false
	}

	approvals, rejections := 0, 0
	for _, v := range verdicts {
		switch v.Decision {
		case models.Approve:
			approvals++
		case models.Reject:
			rejections++
		}
	}

	switch rule {
	case models.AnyOne:
		return approvals >= 1
	case models.All:
		// A collected non-approval already blocks unanimity.
		return approvals < len(verdicts)
	case models.Majority:
		return approvals > rejections+missing || rejections >= approvals+missing
	}
	return false
}

// combineVerdicts applies the approval rule to the collected verdicts.
// expected is the gate's full reviewer count, so All can never approve on a
// partial set of verdicts.
func combineVerdicts(rule models.ApprovalRule, risk models.RiskLevel, expected int, verdicts []models.Verdict) GateOutcome {
	outcome := GateOutcome{Verdicts: verdicts}

	approvals, rejections := 0, 0
	var feedback []string
	for _, v := range verdicts {
		switch v.Decision {
		case models.Approve:
			approvals++
		case models.Reject:
			rejections++
		}
		if v.Decision != models.Approve && v.Notes != "" {
			feedback = append(feedback, fmt.Sprintf("%s: %s", v.Reviewer, v.Notes))
		}
	}
	outcome.Feedback = strings.Join(feedback, "\n")

	// Safety rule: a single explicit rejection against Critical-risk work
	// stops the plan, overriding AnyOne and Majority.
	if risk == models.RiskCritical && rejections > 0 {
		outcome.Terminal = true
		return outcome
	}

	switch rule {
	case models.AnyOne:
		outcome.Approved = approvals >= 1
	case models.All:
		outcome.Approved = approvals == expected && expected > 0
	case models.Majority:
		outcome.Approved = approvals > rejections
	}
	return outcome
}

// combineOutputs renders a wave's task outputs into a single reviewable
// document.
func combineOutputs(results []models.TaskResult) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "### Task %s (%s)\n%s\n\n", r.TaskID, r.Worker, r.Output)
	}
	return sb.String()
}
