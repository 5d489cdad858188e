package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/dispatch/internal/registry"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and roster without executing anything",
		Long: `Validate the dispatch configuration and the worker roster. Reports
the first problem found, or confirms both are usable.

Examples:
  dispatch validate
  dispatch validate --config custom.yaml --roster team.yaml`,
		Args: cobra.NoArgs,
		RunE: validateCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .dispatch/config.yaml)")
	cmd.Flags().String("roster", "", "Path to worker roster YAML (default: built-in roster)")

	return cmd
}

// validateCommand implements the validate command logic
func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := registry.LoadRoster(cfg.RosterPath)
	if err != nil {
		return fmt.Errorf("roster is invalid: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration is valid.\n")
	fmt.Fprintf(out, "Roster is valid: %d worker(s).\n", reg.Len())
	return nil
}
