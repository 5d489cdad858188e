package worker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/dispatch/internal/models"
)

// ReviewContext carries what a reviewer needs beyond the raw output: which
// wave produced it, the plan's risk level, and the original request.
type ReviewContext struct {
	Wave        string
	Risk        models.RiskLevel
	Description string
}

// CommandReviewer obtains verdicts from reviewer workers via the agent CLI.
type CommandReviewer struct {
	Command string
}

// NewCommandReviewer creates a CommandReviewer for the given agent CLI binary.
func NewCommandReviewer(command string) *CommandReviewer {
	if command == "" {
		command = "claude"
	}
	return &CommandReviewer{Command: command}
}

// BuildReviewPrompt creates the review prompt for a reviewer worker.
func BuildReviewPrompt(reviewer, output string, rc ReviewContext) string {
	return fmt.Sprintf(`Review the following delegated work.

Original request:
%s

Risk level: %s
Stage: %s

Output under review:
%s

Respond in this format:
Verdict: [APPROVE/CHANGES_REQUESTED/REJECT]
Notes: [your detailed feedback]

Respond with APPROVE if the work is acceptable, CHANGES_REQUESTED if it
needs a revision with your feedback, REJECT only if the work is unsalvageable.`,
		rc.Description, rc.Risk, rc.Wave, output)
}

// Review invokes the reviewer worker and parses its verdict. A reviewer
// response without a recognizable verdict is an error, never a silent
// approval.
func (r *CommandReviewer) Review(ctx context.Context, reviewer string, output string, rc ReviewContext) (models.Verdict, error) {
	task := models.Task{
		ID:          fmt.Sprintf("review-%s", rc.Wave),
		Worker:      reviewer,
		Description: BuildReviewPrompt(reviewer, output, rc),
	}

	inv := CommandInvoker{Command: r.Command}
	result, err := inv.Invoke(ctx, task)
	if err != nil {
		return models.Verdict{Reviewer: reviewer}, fmt.Errorf("reviewer %s invocation failed: %w", reviewer, err)
	}
	if result.Err != nil {
		return models.Verdict{Reviewer: reviewer}, fmt.Errorf("reviewer %s invocation failed: %w", reviewer, result.Err)
	}
	if result.ExitCode != 0 {
		return models.Verdict{Reviewer: reviewer}, fmt.Errorf("reviewer %s exited with code %d", reviewer, result.ExitCode)
	}

	content, cliErr := ParseOutput(result.Output)
	if content == "" && cliErr != "" {
		return models.Verdict{Reviewer: reviewer}, fmt.Errorf("reviewer %s returned error: %s", reviewer, cliErr)
	}

	decision, notes := ParseVerdict(content)
	if decision == "" {
		return models.Verdict{Reviewer: reviewer}, fmt.Errorf("reviewer %s did not return a valid verdict", reviewer)
	}

	return models.Verdict{Reviewer: reviewer, Decision: decision, Notes: notes}, nil
}

var verdictRegex = regexp.MustCompile(`Verdict:\s*(APPROVE|CHANGES_REQUESTED|REJECT)`)

// ParseVerdict extracts the decision and notes from reviewer output.
// Tries the exact "Verdict: X" format first, then falls back to scanning for
// verdict keywords anywhere in the output.
func ParseVerdict(output string) (models.Decision, string) {
	var decision models.Decision

	if matches := verdictRegex.FindStringSubmatch(output); len(matches) > 1 {
		decision = keywordToDecision(matches[1])
	}

	if decision == "" {
		switch {
		case strings.Contains(output, "CHANGES_REQUESTED"):
			decision = models.ChangesRequested
		case strings.Contains(output, "REJECT"):
			decision = models.Reject
		case strings.Contains(output, "APPROVE"):
			decision = models.Approve
		}
	}

	if decision == "" {
		return "", ""
	}

	// Everything after the verdict line is notes.
	var notesLines []string
	foundVerdict := false
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "Verdict") {
			foundVerdict = true
			continue
		}
		if foundVerdict {
			trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "Notes:"))
			if trimmed != "" {
				notesLines = append(notesLines, trimmed)
			}
		}
	}

	return decision, strings.Join(notesLines, "\n")
}

func keywordToDecision(keyword string) models.Decision {
	switch keyword {
	case "APPROVE":
		return models.Approve
	case "CHANGES_REQUESTED":
		return models.ChangesRequested
	case "REJECT":
		return models.Reject
	}
	return ""
}
