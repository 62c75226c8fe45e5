package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docchat/cli/internal/session"
)

type chatView struct {
	input    textinput.Model
	viewport viewport.Model
}

func newChatView() chatView {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 0
	ti.Focus()

	return chatView{
		input:    ti,
		viewport: viewport.New(0, 0),
	}
}

func (c *chatView) resize(width, height int) {
	c.input.Width = width - 4
	c.viewport.Width = width
	// header + input box + status + help
	vh := height - 7
	if vh < 3 {
		vh = 3
	}
	c.viewport.Height = vh
}

// answerDoneMsg carries the result of one question round-trip.
type answerDoneMsg struct {
	answer string
	err    error
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		question := strings.TrimSpace(m.chat.input.Value())
		if question == "" {
			return m, nil
		}
		m.chat.input.SetValue("")
		m.app.sess.Append(session.RoleUser, question)
		m.refreshTranscript()
		m.busy = true
		m.status = "Thinking..."
		return m, tea.Batch(m.answerCmd(question), m.spin.Tick)

	case msg.Type == tea.KeyCtrlL:
		m.app.sess.ClearHistory()
		m.refreshTranscript()
		m.status = "Chat history cleared."
		return m, nil
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m Model) answerCmd(question string) tea.Cmd {
	engine := m.app.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		answer, err := engine.Answer(ctx, question)
		return answerDoneMsg{answer: answer, err: err}
	}
}

func (m Model) handleAnswerDone(msg answerDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		// History and store are untouched by a failed query.
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}
	m.app.sess.Append(session.RoleAssistant, msg.answer)
	m.refreshTranscript()
	m.status = "Ready."
	return m, nil
}

func (m *Model) refreshTranscript() {
	var lines []string
	for _, turn := range m.app.sess.History {
		switch turn.Role {
		case session.RoleUser:
			lines = append(lines, userStyle.Render("You: ")+turn.Content)
		case session.RoleAssistant:
			lines = append(lines, assistantStyle.Render("AI: ")+turn.Content)
		}
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		lines = []string{mutedStyle.Render("No messages yet. Upload documents, then ask away.")}
	}
	m.chat.viewport.SetContent(strings.Join(lines, "\n"))
	m.chat.viewport.GotoBottom()
}

func (m Model) viewChat() string {
	return m.chat.viewport.View() + "\n" + inputBoxStyle.Render(m.chat.input.View())
}
