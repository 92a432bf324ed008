package ui

import (
	"context"
	"errors"
)

// ErrAborted is returned when the user quits a prompt (ctrl+c, esc, EOF).
var ErrAborted = errors.New("prompt aborted")

// Kind selects how a Prompt is presented.
type Kind int

const (
	KindText Kind = iota
	KindSingleChoice
)

// Choice is one entry of a single-choice menu. Value is what Ask returns
// when the entry is picked; Hint is shown dimmed next to the label.
type Choice struct {
	Label string
	Hint  string
	Value string
}

// Prompt describes one question. Validate is consulted for KindText
// answers; Choices is used for KindSingleChoice.
type Prompt struct {
	Kind     Kind
	Message  string
	Validate func(string) error
	Choices  []Choice
}

// Asker presents a Prompt and returns the answer.
type Asker interface {
	Ask(ctx context.Context, p Prompt) (string, error)
}

func (p Prompt) validate(s string) error {
	if p.Validate == nil {
		return nil
	}
	return p.Validate(s)
}
