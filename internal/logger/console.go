// Package logger provides logging implementations for dispatch execution.
//
// The logger offers structured progress output at the plan, wave, task, and
// gate levels. Implementations are thread-safe and filter by log level.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/dispatch/internal/models"
)

// Log level constants for filtering.
const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger logs execution progress to a writer with timestamps and
// thread safety. All output is prefixed with [HH:MM:SS] timestamps. Color is
// enabled automatically when writing to a TTY.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// writer. If writer is nil, messages are silently discarded. Valid levels:
// trace, debug, info, warn, error (case-insensitive); empty or invalid
// levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a TTY that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func (cl *ConsoleLogger) printf(format string, args ...interface{}) {
	if cl.writer == nil {
		return
	}
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(cl.writer, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	if cl.shouldLog("debug") {
		cl.printf("[DEBUG] %s", message)
	}
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	if cl.shouldLog("info") {
		cl.printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	if cl.shouldLog("warn") {
		cl.printf("[WARN] %s", message)
	}
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	if cl.shouldLog("error") {
		cl.printf("[ERROR] %s", message)
	}
}

// LogPlanStart logs the start of plan execution.
func (cl *ConsoleLogger) LogPlanStart(plan *models.Plan) {
	if !cl.shouldLog("info") {
		return
	}
	cl.printf("Executing plan %q: %d wave(s), %d task(s), risk %s",
		plan.Name, len(plan.Waves), plan.TaskCount(), plan.Analysis.Risk)
}

// LogWaveStart logs the start of a wave pass. Attempt is 1-indexed;
// revision loops re-run waves with a higher attempt number.
func (cl *ConsoleLogger) LogWaveStart(wave models.Wave, attempt int) {
	if !cl.shouldLog("info") {
		return
	}
	suffix := ""
	if attempt > 1 {
		suffix = fmt.Sprintf(" (revision %d)", attempt)
	}
	cl.printf("Starting %s with %d task(s), %s mode%s", wave.Name, len(wave.Tasks), wave.Mode, suffix)
}

// LogWaveComplete logs the completion of a wave pass.
func (cl *ConsoleLogger) LogWaveComplete(wave models.Wave, duration time.Duration, results []models.TaskResult) {
	if !cl.shouldLog("info") {
		return
	}
	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	cl.printf("Completed %s in %s: %d/%d task(s) succeeded",
		wave.Name, duration.Round(time.Second), succeeded, len(results))
}

// LogTaskStart logs the dispatch of a single task.
func (cl *ConsoleLogger) LogTaskStart(task models.Task) {
	if cl.shouldLog("debug") {
		cl.printf("[DEBUG] Dispatching task %s to %s", task.ID, task.Worker)
	}
}

// LogTaskResult logs the terminal outcome of a single task.
func (cl *ConsoleLogger) LogTaskResult(result models.TaskResult) {
	if !cl.shouldLog("info") {
		return
	}
	status := string(result.Status)
	if cl.colorOutput {
		switch result.Status {
		case models.StatusSucceeded:
			status = color.GreenString(status)
		case models.StatusFailed, models.StatusRejected:
			status = color.RedString(status)
		}
	}
	cl.printf("Task %s (%s): %s after %d attempt(s)", result.TaskID, result.Worker, status, result.Attempts)
}

// LogGateVerdicts logs the outcome of a quality gate check.
func (cl *ConsoleLogger) LogGateVerdicts(wave models.Wave, verdicts []models.Verdict, approved bool) {
	if !cl.shouldLog("info") {
		return
	}
	outcome := "approved"
	if !approved {
		outcome = "not approved"
	}
	if cl.colorOutput {
		if approved {
			outcome = color.GreenString(outcome)
		} else {
			outcome = color.YellowString(outcome)
		}
	}
	cl.printf("Gate for %s: %s (%d verdict(s))", wave.Name, outcome, len(verdicts))
	for _, v := range verdicts {
		cl.printf("  %s: %s", v.Reviewer, v.Decision)
	}
}

// LogSummary logs the final plan execution summary.
func (cl *ConsoleLogger) LogSummary(result *models.PlanResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}
	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "\nExecution Summary:\n")
	fmt.Fprintf(cl.writer, "  State: %s\n", result.State)
	fmt.Fprintf(cl.writer, "  Wave passes: %d\n", len(result.Waves))
	fmt.Fprintf(cl.writer, "  Total duration: %s\n", result.Duration.Round(time.Second))
	if result.Cause != nil {
		fmt.Fprintf(cl.writer, "  Cause: %v\n", result.Cause)
	}
	if result.Escalated {
		line := "Escalated for manual review"
		if cl.colorOutput {
			line = color.RedString(line)
		}
		fmt.Fprintf(cl.writer, "  %s\n", line)
	}
	for _, wr := range result.Waves {
		for _, tr := range wr.Results {
			if tr.Status == models.StatusFailed || tr.Status == models.StatusRejected {
				fmt.Fprintf(cl.writer, "  - Task %s (%s): %s\n", tr.TaskID, tr.Worker, tr.Status)
			}
		}
	}
}
