package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"

	"tubegrab/internal/progress"
	"tubegrab/internal/util/format"
)

const barRefresh = 100 * time.Millisecond

// Bar is a progress.Reporter that redraws a single terminal line per step.
type Bar struct {
	out    io.Writer
	bar    bubblesprogress.Model
	styles Styles
	now    func() time.Time

	mu       sync.Mutex
	active   string // step with a line currently drawn
	lastDraw time.Time
}

func NewBar(out io.Writer) *Bar {
	return &Bar{
		out: out,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(40),
		),
		styles: defaultStyles(),
		now:    time.Now,
	}
}

func (b *Bar) Update(u progress.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pct := u.Percent()
	if pct < 0 {
		return
	}
	now := b.now()
	final := u.Current >= u.Total
	if b.active == u.Step && !final && now.Sub(b.lastDraw) < barRefresh {
		return
	}
	b.active = u.Step
	b.lastDraw = now
	fmt.Fprintf(b.out, "\r%s %s %5.1f%%  %s ",
		b.stepLabel(u.Step), b.bar.ViewAs(pct/100), pct, format.Progress(u.Current, u.Total))
}

func (b *Bar) Log(l progress.Log) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLine()
	fmt.Fprintf(b.out, "%s %s\n", b.stepLabel(l.Step), b.styles.Warning.Render(l.Line))
}

func (b *Bar) Result(r progress.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLine()
	if r.Err != nil {
		fmt.Fprintf(b.out, "%s %s\n", b.stepLabel(r.Step), b.styles.Error.Render("✗ "+r.Err.Error()))
		return
	}
	fmt.Fprintf(b.out, "%s %s\n", b.stepLabel(r.Step),
		b.styles.Success.Render(fmt.Sprintf("✓ %s (%s)", filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))))
}

// breakLine ends a partially drawn bar so the next output starts clean.
func (b *Bar) breakLine() {
	if b.active != "" {
		fmt.Fprintln(b.out)
		b.active = ""
	}
}

func (b *Bar) stepLabel(step string) string {
	label := fmt.Sprintf("%-6s", step)
	if step == "merge" {
		return b.styles.StepMux.Render(label)
	}
	return b.styles.StepDL.Render(label)
}
