package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/dispatch/internal/analyzer"
	"github.com/harrison/dispatch/internal/config"
	"github.com/harrison/dispatch/internal/executor"
	"github.com/harrison/dispatch/internal/history"
	"github.com/harrison/dispatch/internal/logger"
	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/planner"
	"github.com/harrison/dispatch/internal/registry"
	"github.com/harrison/dispatch/internal/worker"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <request>...",
		Short: "Delegate a work request and execute the resulting plan",
		Long: `Delegate a work request: analyze it, select workers from the roster,
build a wave-based plan, and execute it with quality gates.

The request is the remaining arguments joined as free text. Configuration
is loaded from .dispatch/config.yaml if present; CLI flags override
configuration file settings.

Examples:
  # Simple request
  dispatch run fix the typo in the README

  # Force a specific worker (bypasses capability matching)
  dispatch run --worker backend-engineer add request logging middleware

  # Attach a structured requirements document
  dispatch run --requirements specs/checkout.md build the checkout flow

  # Other options
  dispatch run --timeout 45m migrate the user table    # Per-worker timeout
  dispatch run --max-concurrency 2 refactor the API    # Limit parallel tasks
  dispatch run --roster team.yaml ship the new banner  # Custom worker roster`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .dispatch/config.yaml)")
	cmd.Flags().String("worker", "", "Delegate directly to this worker, bypassing capability matching")
	cmd.Flags().String("requirements", "", "Path to a requirements document to attach to the request")
	cmd.Flags().String("roster", "", "Path to worker roster YAML (default: built-in roster)")
	cmd.Flags().Int("max-concurrency", -1, "Maximum concurrent tasks per wave (0 = unlimited, -1 = use config)")
	cmd.Flags().String("timeout", "", "Per-worker invocation timeout (e.g., 30m, 2h)")
	cmd.Flags().String("worker-command", "", "Agent CLI binary used to invoke workers")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintf(cmd.OutOrStdout(), "\nStarting execution...\n\n")

	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}
	consoleLog := logger.NewConsoleLogger(os.Stdout, logLevel)

	orch := executor.NewOrchestrator(
		worker.NewCommandInvoker(cfg.WorkerCommand),
		executor.NewGateEnforcer(worker.NewCommandReviewer(cfg.WorkerCommand)),
		consoleLog,
		executor.Config{
			WorkerTimeout:  cfg.WorkerTimeout,
			InvokeRetries:  cfg.InvokeRetries,
			MaxConcurrency: cfg.MaxConcurrency,
		},
	)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		orch.SetRecorder(store)
	}
	if cfg.SnapshotPath != "" {
		orch.SetSnapshotSink(executor.NewFileSnapshotSink(cfg.SnapshotPath))
	}

	// Ctrl-C cancels in-flight workers and aborts the plan cleanly.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := executor.NewProgressTracker(plan)
	result, err := orch.Execute(ctx, plan, tracker)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	if store != nil {
		if recErr := store.RecordRun(plan.Name, plan.Analysis.Risk, result); recErr != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to record run: %v\n", recErr)
		}
	}

	if !result.Delivered() {
		return fmt.Errorf("plan aborted: %w", result.Cause)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nDelivered %d output(s).\n", len(result.Outputs))
	return nil
}

// loadMergedConfig loads configuration and applies CLI flag overrides.
func loadMergedConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var maxConcurrencyPtr *int
	if cmd.Flags().Changed("max-concurrency") {
		v, _ := cmd.Flags().GetInt("max-concurrency")
		maxConcurrencyPtr = &v
	}

	var timeoutPtr *time.Duration
	if cmd.Flags().Changed("timeout") {
		timeoutStr, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", timeoutStr, err)
		}
		timeoutPtr = &timeout
	}

	var rosterPtr *string
	if cmd.Flags().Changed("roster") {
		v, _ := cmd.Flags().GetString("roster")
		rosterPtr = &v
	}

	var commandPtr *string
	if cmd.Flags().Changed("worker-command") {
		v, _ := cmd.Flags().GetString("worker-command")
		commandPtr = &v
	}

	cfg.MergeWithFlags(maxConcurrencyPtr, timeoutPtr, rosterPtr, commandPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildRequest assembles the WorkRequest from command arguments and flags.
func buildRequest(cmd *cobra.Command, args []string) (models.WorkRequest, error) {
	req := models.WorkRequest{
		Description: strings.TrimSpace(strings.Join(args, " ")),
	}
	if req.Description == "" {
		return req, fmt.Errorf("request description cannot be empty")
	}

	req.WorkerOverride, _ = cmd.Flags().GetString("worker")

	if reqPath, _ := cmd.Flags().GetString("requirements"); reqPath != "" {
		data, err := os.ReadFile(reqPath)
		if err != nil {
			return req, fmt.Errorf("failed to read requirements document: %w", err)
		}
		req.RequirementsDoc = string(data)
	}

	return req, nil
}

// buildPlan runs the analyze/score/plan pipeline for a request.
func buildPlan(req models.WorkRequest, reg *registry.Registry) (*models.Plan, []models.Candidate, error) {
	svc := executor.NewService(analyzer.New(), reg, planner.New(), nil)
	plan, candidates, err := svc.BuildPlan(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build plan: %w", err)
	}
	return plan, candidates, nil
}

// printPlanSummary displays the analysis and plan shape before execution.
func printPlanSummary(cmd *cobra.Command, plan *models.Plan, candidates []models.Candidate) {
	out := cmd.OutOrStdout()
	analysis := plan.Analysis

	fmt.Fprintf(out, "Request Analysis:\n")
	fmt.Fprintf(out, "  Domains: %s\n", joinDomains(analysis.Domains))
	fmt.Fprintf(out, "  Complexity: %.2f\n", analysis.ComplexityScore)
	fmt.Fprintf(out, "  Risk: %s\n", analysis.Risk)
	if analysis.WorkerOverride != "" {
		fmt.Fprintf(out, "  Worker override: %s\n", analysis.WorkerOverride)
	}

	if len(candidates) > 0 {
		fmt.Fprintf(out, "\nCandidates:\n")
		for _, c := range candidates {
			fmt.Fprintf(out, "  %-24s %.2f\n", c.Worker.Name, c.Confidence)
		}
	}

	fmt.Fprintf(out, "\nPlan Summary:\n")
	fmt.Fprintf(out, "  Waves: %d\n", len(plan.Waves))
	fmt.Fprintf(out, "  Tasks: %d\n", plan.TaskCount())
	gated := 0
	for _, w := range plan.Waves {
		if w.Gate != nil {
			gated++
		}
	}
	fmt.Fprintf(out, "  Gated waves: %d\n", gated)
}

func joinDomains(domains []models.DomainTag) string {
	parts := make([]string, len(domains))
	for i, d := range domains {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
