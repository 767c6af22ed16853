package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/version"
)

// NewVersionCommand reports build metadata and the oracle the build is configured for.
func NewVersionCommand(container *app.Container) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show PteroAI version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version.Version)
				return nil
			}
			fmt.Fprintf(out, "pteroai %s (%s)\n", version.Version, runtime.Version())
			if version.Commit != "" {
				fmt.Fprintf(out, "commit %s, built %s\n", version.Commit, version.BuildDate)
			}
			cfg := container.Config
			model := cfg.Oracle.Model
			if model == "" {
				model = "default"
			}
			fmt.Fprintf(out, "oracle: %s/%s, validator model %s\n", cfg.GetOracleProvider(), model, cfg.GetValidatorModel())
			if container.OracleErr != nil {
				fmt.Fprintf(out, "oracle offline: %v\n", container.OracleErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
