package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docchat/cli/internal/rag"
)

type settingsView struct {
	tempInput textinput.Model
	ctxInput  textinput.Model
	focus     int
}

func newSettingsView(current rag.Settings) settingsView {
	temp := textinput.New()
	temp.Prompt = "Temperature (0.0-1.0): "
	temp.SetValue(strconv.FormatFloat(current.Temperature, 'f', 1, 64))
	temp.CharLimit = 4

	ctx := textinput.New()
	ctx.Prompt = "Context length (1-5): "
	ctx.SetValue(strconv.Itoa(current.ContextLength))
	ctx.CharLimit = 1

	return settingsView{tempInput: temp, ctxInput: ctx}
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown:
		m.settings.focus = 1 - m.settings.focus
		if m.settings.focus == 0 {
			m.settings.ctxInput.Blur()
			return m, m.settings.tempInput.Focus()
		}
		m.settings.tempInput.Blur()
		return m, m.settings.ctxInput.Focus()

	case tea.KeyEnter:
		return m.applySettings(), nil
	}

	var cmd tea.Cmd
	if m.settings.focus == 0 {
		if !m.settings.tempInput.Focused() {
			return m, m.settings.tempInput.Focus()
		}
		m.settings.tempInput, cmd = m.settings.tempInput.Update(msg)
	} else {
		m.settings.ctxInput, cmd = m.settings.ctxInput.Update(msg)
	}
	return m, cmd
}

// applySettings parses both fields and pushes them to the engine. The change
// affects the next query only.
func (m Model) applySettings() Model {
	temperature, err := strconv.ParseFloat(strings.TrimSpace(m.settings.tempInput.Value()), 64)
	if err != nil {
		m.status = "Error: temperature must be a number"
		return m
	}
	contextLength, err := strconv.Atoi(strings.TrimSpace(m.settings.ctxInput.Value()))
	if err != nil {
		m.status = "Error: context length must be an integer"
		return m
	}

	settings := rag.Settings{Temperature: temperature, ContextLength: contextLength}
	if err := m.app.engine.UpdateSettings(settings); err != nil {
		m.status = "Error: " + err.Error()
		return m
	}
	m.status = "Settings updated."
	return m
}

func (m Model) viewSettings() string {
	current := m.app.engine.Settings()
	lines := []string{
		titleStyle.Render("Settings"),
		"",
		m.settings.tempInput.View(),
		m.settings.ctxInput.View(),
		"",
		mutedStyle.Render(fmt.Sprintf("Active: temperature=%.1f, context_length=%d",
			current.Temperature, current.ContextLength)),
		"",
		mutedStyle.Render("up/down: switch field • enter: apply • ctrl+l (chat tab): clear history"),
	}
	return strings.Join(lines, "\n")
}
