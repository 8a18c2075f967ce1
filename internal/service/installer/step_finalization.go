package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/rolecast/internal/config"
	"github.com/sandevgo/rolecast/internal/service/memory"
)

// FinalizationStep fills in defaults the wizard did not ask about
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.EnvVars["ROLECAST_DEBUG"] == "" {
		state.EnvVars["ROLECAST_DEBUG"] = "0"
	}
	if state.EnvVars["ROLECAST_LISTEN_ADDR"] == "" {
		state.EnvVars["ROLECAST_LISTEN_ADDR"] = ":8090"
	}
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

// SaveEnvStep writes the collected configuration to the runtime .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}

	path := config.GetRuntimePath()

	if err := os.MkdirAll(path, 0755); err != nil {
		s.err = fmt.Errorf("failed to create runtime directory: %w", err)
		return s, nil
	}

	envPath := filepath.Join(path, ".env")

	if _, err := os.Stat(envPath); err == nil {
		s.err = fmt.Errorf(".env file already exists at %s", envPath)
		return s, nil
	}

	var content strings.Builder
	for key, value := range state.EnvVars {
		content.WriteString(fmt.Sprintf("%s=%s\n", key, value))
	}

	if err := os.WriteFile(envPath, []byte(content.String()), 0600); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// PersonaFileStep seeds the runtime directory with a starter persona the
// user can edit before the first run
type PersonaFileStep struct {
	err  error
	done bool
}

func NewPersonaFileStep() Step {
	return &PersonaFileStep{}
}

func (s *PersonaFileStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *PersonaFileStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}

	path := config.GetRuntimePath()
	if err := os.MkdirAll(path, 0755); err != nil {
		s.err = fmt.Errorf("failed to create runtime directory: %w", err)
		return s, nil
	}

	personaPath := filepath.Join(path, "PERSONA.md")
	if _, err := os.Stat(personaPath); err == nil {
		// Never overwrite a persona the user already wrote.
		s.done = true
		return nil, nil
	}

	if err := os.WriteFile(personaPath, []byte(memory.DefaultPersona+"\n"), 0644); err != nil {
		s.err = fmt.Errorf("failed to write %s: %w", personaPath, err)
		return s, nil
	}

	s.done = true
	return nil, nil
}

func (s *PersonaFileStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Persona file initialized!\n"
	}
	return "Initializing persona file...\n"
}
