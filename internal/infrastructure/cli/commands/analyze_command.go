package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
)

// NewAnalyzeFileCommand creates the analyze-file command
func NewAnalyzeFileCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze-file <path>",
		Short: "Build and print the knowledge record for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}
			knowledge := container.Knowledge.GetOrAnalyze(cmd.Context(), path)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(knowledge); err != nil {
					return err
				}
			} else {
				helpers.RenderKnowledge(out, knowledge)
			}
			if knowledge.Failed() {
				return knowledge.Error
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}
