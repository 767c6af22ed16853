package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/application/gate"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// decideOptions controls one pass through decide and the gate.
type decideOptions struct {
	dryRun  bool
	asJSON  bool
	timeout time.Duration
}

// NewDecideCommand creates the decide command
func NewDecideCommand(container *app.Container) *cobra.Command {
	var opts decideOptions

	cmd := &cobra.Command{
		Use:   "decide [request]",
		Short: "Plan and validate a change request, then ask before anything risky",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}
			var confirmer ports.Confirmer
			if helpers.IsInteractive() {
				confirmer = helpers.NewPrompter(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
			}
			return runDecision(ctx, cmd.OutOrStdout(), container, strings.Join(args, " "), confirmer, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Simulate the plan without asking for confirmation")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the decision and gate verdict as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Abandon the request after this long")
	return cmd
}

type decisionOutput struct {
	Decision domain.AIDecision  `json:"decision"`
	Verdict  domain.GateVerdict `json:"verdict"`
}

// runDecision runs one request through the decision engine and the gate.
func runDecision(ctx context.Context, out io.Writer, container *app.Container, request string, confirmer ports.Confirmer, opts decideOptions) error {
	system, err := container.Collector.Collect(ctx, container.Config)
	if err != nil {
		return fmt.Errorf("failed to collect system context: %w", err)
	}

	spinner := helpers.NewSpinner(out)
	spinner.Start("Analyzing request...")
	decision, err := container.Decisions.Decide(ctx, request, system)
	spinner.Stop()
	if err != nil {
		if !errors.Is(err, domain.ErrCachePersist) {
			return err
		}
		helpers.PrintWarnings(out, []string{err.Error()})
	}

	verdict := container.Gate.Evaluate(decision)
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(decisionOutput{Decision: decision, Verdict: verdict})
	}
	helpers.RenderDecision(out, decision, verdict)

	if opts.dryRun {
		fmt.Fprintln(out)
		helpers.RenderSimulated(out, gate.DryRun(decision.ExecutionPlan))
		return nil
	}

	outcome, err := container.Gate.Resolve(ctx, request, decision, confirmer)
	if err != nil {
		if errors.Is(err, domain.ErrPlanBlocked) {
			fmt.Fprintln(out, MsgBlocked)
		}
		return err
	}

	fmt.Fprintln(out)
	switch outcome.Choice {
	case domain.ChoiceProceed:
		fmt.Fprintln(out, MsgApproved)
	case domain.ChoiceDryRun:
		helpers.RenderSimulated(out, outcome.Simulated)
	default:
		fmt.Fprintln(out, MsgAborted)
	}
	return nil
}
