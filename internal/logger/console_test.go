package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrison/dispatch/internal/models"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "warn")

	cl.LogDebug("debug message")
	cl.LogInfo("info message")
	cl.LogWarn("warn message")
	cl.LogError("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn and error messages, got %q", out)
	}
}

func TestConsoleLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "loud")

	cl.LogDebug("hidden")
	cl.LogInfo("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug should be filtered at default info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info should pass at default info level")
	}
}

func TestConsoleLogger_NilWriterIsSilent(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	// Must not panic.
	cl.LogInfo("into the void")
	cl.LogSummary(&models.PlanResult{State: models.StateDelivered})
}

func TestConsoleLogger_WaveAndTaskEvents(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	wave := models.Wave{
		Name:  "Core",
		Mode:  models.Parallel,
		Tasks: []models.Task{{ID: "1", Worker: "backend-engineer"}},
	}

	cl.LogWaveStart(wave, 1)
	cl.LogWaveStart(wave, 2)
	cl.LogTaskResult(models.TaskResult{TaskID: "1", Worker: "backend-engineer", Status: models.StatusSucceeded, Attempts: 1})
	cl.LogWaveComplete(wave, 2*time.Second, []models.TaskResult{{Status: models.StatusSucceeded}})
	cl.LogGateVerdicts(wave, []models.Verdict{{Reviewer: "code-reviewer", Decision: models.Approve}}, true)

	out := buf.String()
	if !strings.Contains(out, "Starting Core") {
		t.Errorf("missing wave start: %q", out)
	}
	if !strings.Contains(out, "(revision 2)") {
		t.Errorf("second pass should be marked as a revision: %q", out)
	}
	if !strings.Contains(out, "succeeded") {
		t.Errorf("missing task result: %q", out)
	}
	if !strings.Contains(out, "1/1 task(s) succeeded") {
		t.Errorf("missing wave completion: %q", out)
	}
	if !strings.Contains(out, "code-reviewer: approve") {
		t.Errorf("missing gate verdict: %q", out)
	}
}

func TestConsoleLogger_Summary(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogSummary(&models.PlanResult{
		State:    models.StateAborted,
		Duration: 5 * time.Second,
		Waves: []models.WaveResult{{
			Wave: "Wave 1",
			Results: []models.TaskResult{
				{TaskID: "1", Worker: "w1", Status: models.StatusFailed},
			},
		}},
	})

	out := buf.String()
	if !strings.Contains(out, "State: aborted") {
		t.Errorf("missing state line: %q", out)
	}
	if !strings.Contains(out, "Task 1 (w1): failed") {
		t.Errorf("missing failed task line: %q", out)
	}
}

func TestConsoleLogger_SummaryShowsEscalation(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogSummary(&models.PlanResult{State: models.StateAborted, Escalated: true})

	if !strings.Contains(buf.String(), "Escalated for manual review") {
		t.Errorf("missing escalation line: %q", buf.String())
	}
}
