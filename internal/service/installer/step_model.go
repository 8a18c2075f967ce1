package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ModelStep collects the upstream model name
type ModelStep struct {
	input textinput.Model
}

func NewModelStep() Step {
	input := textinput.New()
	input.Placeholder = "deepseek-chat"
	input.Focus()
	input.CharLimit = 128
	input.Width = 40

	return &ModelStep{input: input}
}

func (s *ModelStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			if value == "" {
				value = "deepseek-chat"
			}
			state.EnvVars["UPSTREAM_MODEL"] = value
			return nil, nil
		}
	}
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter the upstream model to relay to:\n\n%s\n\n(press enter for the default)\n", s.input.View())
}
