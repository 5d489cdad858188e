package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dispatch
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Delegation engine for specialist worker agents",
		Long: `Dispatch analyzes incoming work requests, matches them against a roster
of specialist workers, and executes the resulting delegation plan in
coordinated waves with quality gates between stages.

Plans are built automatically from the request text: domains are detected,
a complexity score and risk level are derived, and workers are selected by
capability confidence.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewRosterCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
