package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/dispatch/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [plan-name]",
		Short: "Show past delegation runs",
		Long: `Show recently executed plans from the history database. With a plan name
argument, shows every recorded wave pass for that plan instead, including
revision passes and gate verdicts.

Examples:
  dispatch history
  dispatch history --limit 50
  dispatch history "add oauth login to the admin panel"`,
		Args: cobra.MaximumNArgs(1),
		RunE: historyCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .dispatch/config.yaml)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in configuration")
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		attempts, err := store.ListAttempts(args[0])
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Fprintf(out, "No recorded wave passes for %q.\n", args[0])
			return nil
		}
		for _, a := range attempts {
			outcome := "not approved"
			if a.Approved {
				outcome = "approved"
			}
			fmt.Fprintf(out, "%s  %s pass %d: %s (%s)\n",
				a.CreatedAt.Format(time.RFC3339), a.Wave, a.Attempt, outcome, a.Duration.Round(time.Second))
			for _, r := range a.Results {
				fmt.Fprintf(out, "    task %s (%s): %s\n", r.TaskID, r.Worker, r.Status)
			}
			for _, v := range a.Verdicts {
				fmt.Fprintf(out, "    verdict %s: %s\n", v.Reviewer, v.Decision)
			}
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded runs.\n")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %-10s risk=%-8s passes=%d  %s\n",
			r.CreatedAt.Format(time.RFC3339), r.State, r.Risk, r.WavePasses, r.PlanName)
		if r.Cause != "" {
			fmt.Fprintf(out, "    cause: %s\n", r.Cause)
		}
		if r.Escalated {
			fmt.Fprintf(out, "    escalated for manual review\n")
		}
	}
	return nil
}
