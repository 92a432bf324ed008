package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LineAsker asks questions over plain line-oriented I/O. It is used when
// stdin is not a terminal.
type LineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	return &LineAsker{in: bufio.NewReader(in), out: out}
}

func (a *LineAsker) Ask(ctx context.Context, p Prompt) (string, error) {
	switch p.Kind {
	case KindText:
		return a.askText(ctx, p)
	case KindSingleChoice:
		return a.askChoice(ctx, p)
	}
	return "", fmt.Errorf("unknown prompt kind %d", p.Kind)
}

func (a *LineAsker) askText(ctx context.Context, p Prompt) (string, error) {
	for {
		fmt.Fprintf(a.out, "%s ", p.Message)
		line, err := a.readLine(ctx)
		if err != nil {
			return "", err
		}
		if verr := p.validate(line); verr != nil {
			fmt.Fprintf(a.out, "%v\n", verr)
			continue
		}
		return line, nil
	}
}

func (a *LineAsker) askChoice(ctx context.Context, p Prompt) (string, error) {
	if len(p.Choices) == 0 {
		return "", errors.New("no choices to pick from")
	}
	fmt.Fprintln(a.out, p.Message)
	for i, c := range p.Choices {
		if c.Hint != "" {
			fmt.Fprintf(a.out, "  %d) %s (%s)\n", i+1, c.Label, c.Hint)
		} else {
			fmt.Fprintf(a.out, "  %d) %s\n", i+1, c.Label)
		}
	}
	for {
		fmt.Fprintf(a.out, "Enter 1-%d: ", len(p.Choices))
		line, err := a.readLine(ctx)
		if err != nil {
			return "", err
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(p.Choices) {
			fmt.Fprintf(a.out, "invalid choice %q\n", line)
			continue
		}
		return p.Choices[n-1].Value, nil
	}
}

func (a *LineAsker) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
