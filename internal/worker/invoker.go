// Package worker implements the invocation interfaces for specialist
// collaborators. Workers are external processes: they accept a task prompt,
// do the work, and return structured output. Failures are reported as
// structured errors rather than silent empty output, and invocations are
// idempotent-safe to retry.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/harrison/dispatch/internal/models"
)

// InvocationResult captures the result of invoking a worker command.
type InvocationResult struct {
	Output   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// CommandInvoker dispatches tasks to workers by shelling out to an agent
// CLI. The assigned worker is referenced as a subagent in the prompt.
type CommandInvoker struct {
	Command string // Agent CLI binary, e.g. "claude"
}

// NewCommandInvoker creates a CommandInvoker for the given agent CLI binary.
func NewCommandInvoker(command string) *CommandInvoker {
	if command == "" {
		command = "claude"
	}
	return &CommandInvoker{Command: command}
}

// BuildArgs constructs the command-line arguments for a task invocation.
func (inv *CommandInvoker) BuildArgs(task models.Task) []string {
	prompt := task.Description
	if task.Worker != "" {
		prompt = fmt.Sprintf("use the %s subagent to: %s", task.Worker, task.Description)
	}

	return []string{
		"-p", prompt,
		"--output-format", "json",
	}
}

// Invoke executes the worker command under the given context. Context
// cancellation and timeouts terminate the command; command start failures
// are returned as errors, non-zero exits are recorded in the result.
func (inv *CommandInvoker) Invoke(ctx context.Context, task models.Task) (*InvocationResult, error) {
	startTime := time.Now()

	cmd := exec.CommandContext(ctx, inv.Command, inv.BuildArgs(task)...)
	output, err := cmd.CombinedOutput()

	result := &InvocationResult{
		Output:   string(output),
		Duration: time.Since(startTime),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Err = err
		}
	}

	return result, nil
}

// cliOutput mirrors the JSON envelope emitted by the agent CLI.
type cliOutput struct {
	Result  string `json:"result"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// ParseOutput extracts the content from the agent CLI's JSON output. If the
// output is not valid JSON the raw output is returned as content.
func ParseOutput(output string) (content string, errMsg string) {
	var co cliOutput
	if err := json.Unmarshal([]byte(output), &co); err != nil {
		return output, ""
	}
	switch {
	case co.Result != "":
		return co.Result, co.Error
	case co.Content != "":
		return co.Content, co.Error
	default:
		return "", co.Error
	}
}
