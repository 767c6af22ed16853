package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/pteroai-go/internal/infrastructure/security"
)

// NewGuardrailCommand creates the guardrail command with list/scan subcommands
func NewGuardrailCommand(container *app.Container) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Inspect the danger patterns used by static analysis",
	}

	guardrailCmd.AddCommand(
		newGuardrailListCommand(container),
		newGuardrailScanCommand(container),
		newGuardrailInitCommand(container),
	)

	return guardrailCmd
}

// newGuardrailListCommand lists the active danger patterns
func newGuardrailListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active danger patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rules file: %s\n", container.Config.RulesFile)
			for _, pattern := range container.Guardrail.Patterns() {
				fmt.Fprintf(out, "  %-40s %s\n", pattern.Pattern, pattern.Message)
			}
			return nil
		},
	}
}

// newGuardrailScanCommand scans a file with the danger patterns only
func newGuardrailScanCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file>",
		Short: "Report danger pattern matches in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			risks := container.Guardrail.Scan(string(data))
			if len(risks) == 0 {
				fmt.Fprintln(out, "No danger patterns matched.")
				return nil
			}
			helpers.PrintWarnings(out, risks)
			return nil
		},
	}
}

// newGuardrailInitCommand writes the built-in rules to the configured rules file
func newGuardrailInitCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the built-in danger patterns to the rules file for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := container.Config.RulesFile
			if path == "" {
				return fmt.Errorf("rulesFile is not configured")
			}
			written, err := security.WriteDefaultRules(path)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintf(cmd.OutOrStdout(), "Rules file already exists: %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default rules to %s\n", path)
			return nil
		},
	}
}
