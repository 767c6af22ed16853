package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/commands"
	"github.com/doeshing/pteroai-go/internal/version"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The returned cleanup releases the
// history database and must run after Execute.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func(), error) {
	container, err := app.BuildContainer(ctx, app.Options{Verbose: opts.Verbose})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = container.Close() }

	root := &cobra.Command{
		Use:     "pteroai",
		Short:   "PteroAI - validated change planning for Pterodactyl panels",
		Long:    "PteroAI turns a change request into a validated execution plan and asks before anything risky.",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		commands.NewDecideCommand(container),
		commands.NewInteractiveCommand(container),
		commands.NewValidateChangeCommand(container),
		commands.NewValidatePatchCommand(container),
		commands.NewAnalyzeFileCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewCacheCommand(container),
		commands.NewConfigCommand(container),
		commands.NewGuardrailCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(container),
	)
	return root, cleanup, nil
}
