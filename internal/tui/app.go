// Package tui is the interactive shell: a tabbed terminal UI over the
// document pipeline and the query engine.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat/cli/config"
	"github.com/docchat/cli/internal/documents"
	"github.com/docchat/cli/internal/index"
	"github.com/docchat/cli/internal/rag"
	"github.com/docchat/cli/internal/session"
)

type tab int

const (
	tabChat tab = iota
	tabDocuments
	tabSettings
)

var tabNames = []string{"Chat", "Documents", "Settings"}

// App wires the pipeline components the shell drives.
type App struct {
	cfg     *config.Config
	loader  *documents.Loader
	builder *index.Builder
	engine  *rag.Engine
	sess    *session.Session
}

// NewApp creates the shell over the assembled pipeline.
func NewApp(cfg *config.Config, loader *documents.Loader, builder *index.Builder, engine *rag.Engine, sess *session.Session) *App {
	return &App{cfg: cfg, loader: loader, builder: builder, engine: engine, sess: sess}
}

// Run starts the terminal UI and blocks until the user quits.
func (a *App) Run() error {
	_, err := tea.NewProgram(newModel(a), tea.WithAltScreen()).Run()
	return err
}

// Model is the Bubble Tea model for the whole shell. One user action runs at
// a time; while busy, key input other than quit is dropped.
type Model struct {
	app       *App
	activeTab tab
	width     int
	height    int
	busy      bool
	status    string

	chat     chatView
	docs     documentsView
	settings settingsView
	spin     spinner.Model
}

func newModel(a *App) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		app:      a,
		chat:     newChatView(),
		docs:     newDocumentsView(a.cfg.Paths.DocumentsDir),
		settings: newSettingsView(a.engine.Settings()),
		spin:     sp,
		status:   "Upload documents to get started.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update routes events to the active tab.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ingestDoneMsg:
		return m.handleIngestDone(msg)

	case answerDoneMsg:
		return m.handleAnswerDone(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			// Pipeline runs synchronously from the user's point of
			// view; drop input until it finishes.
			return m, nil
		}
		if msg.Type == tea.KeyTab || msg.Type == tea.KeyShiftTab {
			return m.switchTab(msg.Type == tea.KeyShiftTab), nil
		}
		switch m.activeTab {
		case tabChat:
			return m.updateChat(msg)
		case tabDocuments:
			return m.updateDocuments(msg)
		case tabSettings:
			return m.updateSettings(msg)
		}
	}
	return m, nil
}

func (m Model) switchTab(backwards bool) Model {
	n := tab(len(tabNames))
	if backwards {
		m.activeTab = (m.activeTab + n - 1) % n
	} else {
		m.activeTab = (m.activeTab + 1) % n
	}
	return m
}

// View renders the tab bar, the active tab and the status line.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var tabs []string
	for i, name := range tabNames {
		if tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch m.activeTab {
	case tabChat:
		body = m.viewChat()
	case tabDocuments:
		body = m.viewDocuments()
	case tabSettings:
		body = m.viewSettings()
	}

	status := m.status
	if m.busy {
		status = m.spin.View() + " " + status
	}

	return strings.Join([]string{
		header,
		body,
		statusStyle.Render(status),
		helpStyle.Render("tab: switch view • ctrl+c: quit"),
	}, "\n")
}
