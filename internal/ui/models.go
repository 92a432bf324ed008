package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// textModel asks for one line of input and refuses to submit it until the
// prompt's validator accepts it.
type textModel struct {
	prompt  Prompt
	input   textinput.Model
	styles  Styles
	err     error
	value   string
	done    bool
	aborted bool
}

func newTextModel(p Prompt, sty Styles) textModel {
	ti := textinput.New()
	ti.Placeholder = "https://"
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()
	return textModel{prompt: p, input: ti, styles: sty}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			if err := m.prompt.validate(v); err != nil {
				m.err = err
				return m, nil
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// a fresh edit clears the previous complaint
	if _, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
	}
	return m, cmd
}

func (m textModel) View() string {
	if m.done {
		return m.styles.Prompt.Render(m.prompt.Message) + " " + m.styles.Faint.Render(m.value) + "\n"
	}
	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render(m.prompt.Message))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Faint.Render("enter: confirm • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// choiceModel is a cursor-driven single-choice menu.
type choiceModel struct {
	prompt  Prompt
	styles  Styles
	cursor  int
	chosen  int
	done    bool
	aborted bool
}

func newChoiceModel(p Prompt, sty Styles) choiceModel {
	return choiceModel{prompt: p, styles: sty, chosen: -1}
}

func (m choiceModel) Init() tea.Cmd { return nil }

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.prompt.Choices)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.prompt.Choices) - 1
	case "enter":
		if len(m.prompt.Choices) == 0 {
			return m, nil
		}
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.done {
		return m.styles.Prompt.Render(m.prompt.Message) + " " +
			m.styles.Faint.Render(m.prompt.Choices[m.chosen].Label) + "\n"
	}
	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render(m.prompt.Message))
	b.WriteString("\n")
	for i, c := range m.prompt.Choices {
		line := c.Label
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render("> "))
			line = m.styles.Selected.Render(line)
		} else {
			b.WriteString("  ")
			line = m.styles.Item.Render(line)
		}
		b.WriteString(line)
		if c.Hint != "" {
			b.WriteString(" ")
			b.WriteString(m.styles.Hint.Render(fmt.Sprintf("(%s)", c.Hint)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Faint.Render("↑/↓: move • enter: select • esc: quit"))
	b.WriteString("\n")
	return b.String()
}
