package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/registry"
)

// NewRosterCommand creates the roster command
func NewRosterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the workers available for delegation",
		Long: `List every worker in the roster with its role and capability weights.

Uses the built-in roster unless --roster points at a custom YAML file.`,
		Args: cobra.NoArgs,
		RunE: rosterCommand,
	}

	cmd.Flags().String("roster", "", "Path to worker roster YAML (default: built-in roster)")

	return cmd
}

// rosterCommand implements the roster command logic
func rosterCommand(cmd *cobra.Command, args []string) error {
	rosterPath, _ := cmd.Flags().GetString("roster")

	reg, err := registry.LoadRoster(rosterPath)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roster: %d worker(s)\n\n", reg.Len())
	for _, w := range reg.List() {
		fmt.Fprintf(out, "%-24s %s\n", w.Name, w.Role)
		fmt.Fprintf(out, "    %s\n", formatWeights(w.DomainWeights))
	}
	return nil
}

func formatWeights(weights map[models.DomainTag]float64) string {
	if len(weights) == 0 {
		return "(no capability weights)"
	}
	keys := make([]string, 0, len(weights))
	for tag := range weights {
		keys = append(keys, string(tag))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", key, weights[models.DomainTag(key)]))
	}
	return strings.Join(parts, " ")
}
