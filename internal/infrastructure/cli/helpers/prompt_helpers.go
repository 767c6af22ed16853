package helpers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTerminalWriter reports whether w is a terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PromptLine writes promptText and returns the trimmed answer.
func PromptLine(out io.Writer, reader *bufio.Reader, promptText string) (string, error) {
	fmt.Fprint(out, promptText)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ParseChoice maps a y/n/dry answer to a gate choice. Anything unrecognised aborts.
func ParseChoice(answer string) domain.ConfirmChoice {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return domain.ChoiceProceed
	case "dry", "d", "dry-run":
		return domain.ChoiceDryRun
	default:
		return domain.ChoiceAbort
	}
}

// PrintWarnings outputs a list of warning messages to the writer
func PrintWarnings(out io.Writer, warnings []string) {
	for _, warning := range warnings {
		warning = strings.TrimSpace(warning)
		if warning == "" {
			continue
		}
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
}
