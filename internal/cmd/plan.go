package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/dispatch/internal/registry"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <request>...",
		Short: "Build and display a delegation plan without executing it",
		Long: `Build the delegation plan for a request and print it: detected domains,
complexity, risk, candidate workers, and the wave/task/gate structure.
No workers are invoked.

Examples:
  dispatch plan add OAuth login to the admin panel
  dispatch plan --worker database-engineer tune the slow queries
  dispatch plan --requirements specs/payments.md rebuild the billing system`,
		Args: cobra.MinimumNArgs(1),
		RunE: planCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .dispatch/config.yaml)")
	cmd.Flags().String("worker", "", "Delegate directly to this worker, bypassing capability matching")
	cmd.Flags().String("requirements", "", "Path to a requirements document to attach to the request")
	cmd.Flags().String("roster", "", "Path to worker roster YAML (default: built-in roster)")

	return cmd
}

// planCommand implements the plan command logic
func planCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}

	reg, err := registry.LoadRoster(cfg.RosterPath)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	plan, candidates, err := buildPlan(req, reg)
	if err != nil {
		return err
	}

	printPlanSummary(cmd, plan, candidates)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWaves:\n")
	for i, wave := range plan.Waves {
		fmt.Fprintf(out, "  %d. %s (%s", i+1, wave.Name, wave.Mode)
		if wave.Gate != nil {
			fmt.Fprintf(out, ", gate: %s of %d reviewer(s), %d revision(s)",
				wave.Gate.Rule, len(wave.Gate.Reviewers), wave.Gate.MaxRetries)
		}
		fmt.Fprintf(out, ")\n")
		for _, task := range wave.Tasks {
			fmt.Fprintf(out, "     - Task %s -> %s", task.ID, task.Worker)
			if len(task.DependsOn) > 0 {
				fmt.Fprintf(out, " (after %v)", task.DependsOn)
			}
			fmt.Fprintf(out, "\n")
		}
	}

	fmt.Fprintf(out, "\nPlan is valid and ready for execution.\n")
	return nil
}
