package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCommand_SimpleRequest(t *testing.T) {
	cmd := NewPlanCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fix", "the", "typo", "in", "the", "readme"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Request Analysis:")
	assert.Contains(t, output, "documentation")
	assert.Contains(t, output, "Plan Summary:")
	assert.Contains(t, output, "Waves: 1")
	assert.Contains(t, output, "Tasks: 1")
	assert.Contains(t, output, "ready for execution")
}

func TestPlanCommand_WorkerOverride(t *testing.T) {
	cmd := NewPlanCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--worker", "database-engineer", "tune", "the", "slow", "queries"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Worker override: database-engineer")
	assert.Contains(t, output, "database-engineer")
}

func TestPlanCommand_UnknownOverrideWorker(t *testing.T) {
	cmd := NewPlanCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--worker", "nobody", "do", "something"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestPlanCommand_HighRiskGates(t *testing.T) {
	cmd := NewPlanCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fix", "the", "oauth", "login", "flow"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Risk: high")
	assert.Contains(t, output, "gate:")
}

func TestPlanCommand_CustomRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	roster := `workers:
  - name: lone-wolf
    role: implementer
    domains:
      documentation: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(roster), 0644))

	cmd := NewPlanCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--roster", path, "update", "the", "readme"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "lone-wolf")
}
