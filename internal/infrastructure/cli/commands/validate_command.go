package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/application/gate"
	"github.com/doeshing/pteroai-go/internal/application/validation"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/pteroai-go/internal/infrastructure/patch"
)

// errChangeRejected is returned when at least one validated change is invalid.
var errChangeRejected = errors.New("change rejected by validation")

// NewValidateChangeCommand creates the validate-change command
func NewValidateChangeCommand(container *app.Container) *cobra.Command {
	var file, newPath, oldPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate-change",
		Short: "Validate replacing a file's contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New(ErrFileFlagRequired)
			}
			if newPath == "" {
				return errors.New(ErrNewFlagRequired)
			}
			newCode, err := os.ReadFile(newPath)
			if err != nil {
				return fmt.Errorf("failed to read new contents: %w", err)
			}
			oldCode, err := readOldContents(file, oldPath)
			if err != nil {
				return err
			}
			return validateChanges(cmd.Context(), cmd.OutOrStdout(), container, asJSON, []patch.FileChange{
				{Path: file, OldCode: oldCode, NewCode: string(newCode)},
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path of the file being changed (drives language detection)")
	cmd.Flags().StringVar(&newPath, "new", "", "File holding the proposed contents")
	cmd.Flags().StringVar(&oldPath, "old", "", "File holding the current contents (defaults to --file)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	return cmd
}

// NewValidatePatchCommand creates the validate-patch command
func NewValidatePatchCommand(container *app.Container) *cobra.Command {
	var root string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate-patch <unified.diff>",
		Short: "Validate every file touched by a unified diff (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPatch(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if root == "" {
				root = container.Config.PteroPath
			}
			changes, err := patch.Parse(data, func(path string) ([]byte, bool) {
				contents, err := os.ReadFile(resolveUnder(root, path))
				return contents, err == nil
			})
			if err != nil {
				return err
			}
			return validateChanges(cmd.Context(), cmd.OutOrStdout(), container, asJSON, changes)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory patch paths are relative to (defaults to pteroPath)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	return cmd
}

type changeOutput struct {
	Path                 string            `json:"path"`
	Report               validation.Report `json:"report"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
}

// validateChanges runs the change path per file and applies the confirmation policy.
func validateChanges(ctx context.Context, out io.Writer, container *app.Container, asJSON bool, changes []patch.FileChange) error {
	policy := container.Config.ConfirmationPolicy()
	results := make([]changeOutput, 0, len(changes))
	rejected := false

	for _, change := range changes {
		if change.Deleted {
			if !asJSON {
				fmt.Fprintf(out, "Skipping deleted file %s\n", change.Path)
			}
			continue
		}
		report := container.Validator.ValidateCodeChange(ctx, change.Path, change.OldCode, change.NewCode)
		result := changeOutput{
			Path:                 change.Path,
			Report:               report,
			RequiresConfirmation: gate.RequiresConfirmation(report.Result.SecurityLevel, policy),
		}
		results = append(results, result)
		if !report.Result.Valid {
			rejected = true
		}
		if asJSON {
			continue
		}
		helpers.RenderReport(out, change.Path, report)
		if change.Partial {
			helpers.PrintWarnings(out, []string{"original file unavailable; validated hunk context only"})
		}
		if result.RequiresConfirmation {
			fmt.Fprintln(out, "Confirmation required before applying this change.")
		}
		fmt.Fprintln(out)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}
	if rejected {
		return errChangeRejected
	}
	return nil
}

func readOldContents(file, oldPath string) (string, error) {
	path := oldPath
	if path == "" {
		path = file
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if oldPath == "" && errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current contents: %w", err)
	}
	return string(data), nil
}

func readPatch(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch: %w", err)
	}
	return data, nil
}

func resolveUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
