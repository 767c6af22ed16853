package helpers

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Prompter implements ports.Confirmer over a line reader. The reader is shared
// with the interactive loop so buffered input is never lost between them.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter over in and out.
func NewPrompter(in *bufio.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Confirm asks for y, n or dry. End of input counts as n.
func (p *Prompter) Confirm(ctx context.Context, req domain.ConfirmationRequest) (domain.ConfirmChoice, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChoiceAbort, err
	}
	RenderConfirmation(p.out, req)
	answer, err := PromptLine(p.out, p.in, "Proceed? [y/n/dry]: ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ChoiceAbort, nil
		}
		return domain.ChoiceAbort, err
	}
	return ParseChoice(answer), nil
}

var _ ports.Confirmer = (*Prompter)(nil)
