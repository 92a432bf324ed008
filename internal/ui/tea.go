package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// TeaAsker renders prompts as small bubbletea programs on a terminal.
type TeaAsker struct {
	In     io.Reader
	Out    io.Writer
	styles Styles
}

// NewTeaAsker returns an Asker bound to stdin/stdout.
func NewTeaAsker() *TeaAsker {
	return &TeaAsker{In: os.Stdin, Out: os.Stdout, styles: defaultStyles()}
}

func (a *TeaAsker) Ask(ctx context.Context, p Prompt) (string, error) {
	var m tea.Model
	switch p.Kind {
	case KindText:
		m = newTextModel(p, a.styles)
	case KindSingleChoice:
		if len(p.Choices) == 0 {
			return "", errors.New("no choices to pick from")
		}
		m = newChoiceModel(p, a.styles)
	default:
		return "", fmt.Errorf("unknown prompt kind %d", p.Kind)
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.In != nil {
		opts = append(opts, tea.WithInput(a.In))
	}
	if a.Out != nil {
		opts = append(opts, tea.WithOutput(a.Out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return answerOf(final)
}

func answerOf(final tea.Model) (string, error) {
	switch fm := final.(type) {
	case textModel:
		if fm.aborted || !fm.done {
			return "", ErrAborted
		}
		return fm.value, nil
	case choiceModel:
		if fm.aborted || !fm.done {
			return "", ErrAborted
		}
		return fm.prompt.Choices[fm.chosen].Value, nil
	}
	return "", fmt.Errorf("unexpected prompt model %T", final)
}
