package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type backendChoice struct {
	id   string
	desc string
}

// BackendStep selects where conversation memory lives
type BackendStep struct {
	choices []backendChoice
	cursor  int
}

func NewBackendStep() Step {
	return &BackendStep{
		choices: []backendChoice{
			{id: "memory", desc: "In-process map, lost on restart"},
			{id: "file", desc: "One JSON file per conversation"},
			{id: "sqlite", desc: "Single database file"},
			{id: "redis", desc: "Shared Redis instance"},
		},
	}
}

func (s *BackendStep) Init() tea.Cmd {
	return nil
}

func (s *BackendStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars["MEMORY_BACKEND"] = s.choices[s.cursor].id
			return nil, nil
		}
	}
	return s, nil
}

func (s *BackendStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the memory backend:\n\n")
	for i, choice := range s.choices {
		line := fmt.Sprintf("%-8s %s", choice.id, choice.desc)
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}

// RedisAddrStep collects the Redis address, only when the redis backend
// was selected
type RedisAddrStep struct {
	input       textinput.Model
	initialized bool
}

func NewRedisAddrStep() Step {
	return &RedisAddrStep{}
}

func (s *RedisAddrStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *RedisAddrStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.EnvVars["MEMORY_BACKEND"] != "redis" {
		return nil, nil
	}

	if !s.initialized {
		s.input = textinput.New()
		s.input.Placeholder = "localhost:6379"
		s.input.Focus()
		s.input.CharLimit = 128
		s.input.Width = 40
		s.initialized = true
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			if value == "" {
				value = "localhost:6379"
			}
			state.EnvVars["REDIS_ADDR"] = value
			return nil, nil
		}
	}
	return s, cmd
}

func (s *RedisAddrStep) View(state *InstallState) string {
	if !s.initialized {
		return "Loading...\n"
	}
	return fmt.Sprintf("Enter the Redis address:\n\n%s\n\n(press enter for the default)\n", s.input.View())
}
