package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().
			Bold(true)

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func question(message string) string {
	return markStyle.Render("?") + " " + questionStyle.Render(message)
}

// confirmModel is a yes/no prompt.
type confirmModel struct {
	message   string
	value     bool
	done      bool
	cancelled bool
}

func newConfirmModel(req ConfirmRequest) confirmModel {
	return confirmModel{message: req.Message, value: req.Default}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return question(m.message) + " " + answerStyle.Render(yesNo(m.value)) + "\n"
	}
	if m.cancelled {
		return ""
	}
	hint := "(y/N)"
	if m.value {
		hint = "(Y/n)"
	}
	return question(m.message) + " " + helpStyle.Render(hint) + " "
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// selectModel picks one option with the arrow keys.
type selectModel struct {
	message   string
	options   []Option
	cursor    int
	done      bool
	cancelled bool
}

func newSelectModel(req SelectRequest) selectModel {
	m := selectModel{message: req.Message, options: req.Options}
	for i, o := range req.Options {
		if o.Value == req.Default {
			m.cursor = i
			break
		}
	}
	return m
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.options) - 1
		}
	case "down", "j", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) selected() Option {
	return m.options[m.cursor]
}

func (m selectModel) View() string {
	if m.done {
		return question(m.message) + " " + answerStyle.Render(m.selected().Label) + "\n"
	}
	if m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(question(m.message))
	b.WriteString("\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + o.Label))
		} else {
			b.WriteString("  " + o.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ to move, enter to select, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// inputModel reads one line of text.
type inputModel struct {
	message   string
	input     textinput.Model
	fallback  string
	validate  func(string) error
	err       error
	done      bool
	cancelled bool
}

func newInputModel(req InputRequest) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = req.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = req.Default
	}
	if req.Secret {
		ti.EchoMode = textinput.EchoPassword
	}
	ti.Focus()
	return inputModel{
		message:  req.Message,
		input:    ti,
		fallback: req.Default,
		validate: req.Validate,
	}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			value := m.value()
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.err = nil
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// value is the typed text, or the default when nothing was typed.
func (m inputModel) value() string {
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return m.fallback
	}
	return v
}

func (m inputModel) View() string {
	if m.done {
		shown := m.value()
		if m.input.EchoMode == textinput.EchoPassword {
			shown = strings.Repeat("*", len(shown))
		}
		return question(m.message) + " " + answerStyle.Render(shown) + "\n"
	}
	if m.cancelled {
		return ""
	}
	view := question(m.message) + " " + m.input.View() + "\n"
	if m.err != nil {
		view += errorStyle.Render(fmt.Sprintf("  %v", m.err)) + "\n"
	}
	return view
}
