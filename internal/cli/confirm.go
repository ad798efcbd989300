package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleQuestion = lipgloss.NewStyle().Bold(true)
	styleChoice   = lipgloss.NewStyle().Foreground(colorDim)
	styleYes      = lipgloss.NewStyle().Foreground(colorGreen)
	styleNo       = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// ConfirmModel - yes/no prompt
// =============================================================================

// ConfirmModel is the bubbletea model for a yes/no question. Enter accepts
// the default answer; Esc and Ctrl+C answer no.
type ConfirmModel struct {
	Question string
	Default  bool
	Answer   bool
	Done     bool
}

// NewConfirmModel creates a prompt for question.
func NewConfirmModel(question string, def bool) ConfirmModel {
	return ConfirmModel{Question: question, Default: def}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.Answer = true
	case "n", "N", "esc", "ctrl+c":
		m.Answer = false
	case "enter":
		m.Answer = m.Default
	default:
		return m, nil
	}
	m.Done = true
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.Done {
		answer := styleNo.Render("no")
		if m.Answer {
			answer = styleYes.Render("yes")
		}
		return styleQuestion.Render(m.Question) + " " + answer + "\n"
	}
	choices := "[y/N]"
	if m.Default {
		choices = "[Y/n]"
	}
	return styleQuestion.Render(m.Question) + " " + styleChoice.Render(choices) + " "
}

// teaConfirmer asks questions with ConfirmModel. Unanswered questions
// default to yes.
type teaConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (c teaConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(question, true),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, err
	}
	m := final.(ConfirmModel)
	return m.Done && m.Answer, nil
}
