package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// UpstreamURLStep collects the base URL of the OpenAI-compatible upstream
type UpstreamURLStep struct {
	input textinput.Model
}

func NewUpstreamURLStep() Step {
	input := textinput.New()
	input.Placeholder = "https://api.deepseek.com/v1"
	input.Focus()
	input.CharLimit = 255
	input.Width = 48

	return &UpstreamURLStep{input: input}
}

func (s *UpstreamURLStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *UpstreamURLStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			if value == "" {
				return s, nil
			}
			state.EnvVars["UPSTREAM_BASE_URL"] = strings.TrimRight(value, "/")
			return nil, nil
		}
	}
	return s, cmd
}

func (s *UpstreamURLStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter the base URL of your OpenAI-compatible upstream:\n\n%s\n\n(press enter to confirm)\n", s.input.View())
}

// APIKeyStep collects the upstream API key (optional for local upstreams)
type APIKeyStep struct {
	input textinput.Model
}

func NewAPIKeyStep() Step {
	input := textinput.New()
	input.Placeholder = "Optional - press Enter to skip"
	input.Focus()
	input.CharLimit = 255
	input.Width = 48
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'

	return &APIKeyStep{input: input}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			state.EnvVars["UPSTREAM_API_KEY"] = strings.TrimSpace(s.input.Value())
			return nil, nil
		}
	}
	return s, cmd
}

func (s *APIKeyStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter your upstream API key (optional for local upstreams):\n\n%s\n\n(press enter to confirm)\n", s.input.View())
}
