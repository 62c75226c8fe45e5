package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docchat/cli/internal/documents"
)

type documentsView struct {
	dirInput textinput.Model
}

func newDocumentsView(defaultDir string) documentsView {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Path to a directory of .txt/.pdf files"
	ti.SetValue(defaultDir)
	ti.CharLimit = 0

	return documentsView{dirInput: ti}
}

// ingestDoneMsg carries the result of one load-split-embed-index pass.
type ingestDoneMsg struct {
	stats documents.Stats
	err   error
}

func (m Model) updateDocuments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		dir := strings.TrimSpace(m.docs.dirInput.Value())
		if dir == "" {
			return m, nil
		}
		m.busy = true
		m.status = "Processing documents..."
		return m, tea.Batch(m.ingestCmd(dir), m.spin.Tick)
	}

	if !m.docs.dirInput.Focused() {
		return m, m.docs.dirInput.Focus()
	}
	var cmd tea.Cmd
	m.docs.dirInput, cmd = m.docs.dirInput.Update(msg)
	return m, cmd
}

func (m Model) ingestCmd(dir string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		chunks, stats, err := app.loader.LoadAndSplit(dir)
		if err != nil {
			return ingestDoneMsg{err: err}
		}
		store, err := app.builder.CreateStore(context.Background(), chunks)
		if err != nil {
			return ingestDoneMsg{err: err}
		}
		app.engine.SetStore(store)
		return ingestDoneMsg{stats: stats}
	}
}

func (m Model) handleIngestDone(msg ingestDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		// A failed ingest leaves the previous store and chat intact.
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}
	m.app.sess.SetStats(msg.stats.FilesProcessed, msg.stats.Chunks)
	m.status = fmt.Sprintf("Processed %d documents into %d chunks.",
		msg.stats.FilesProcessed, msg.stats.Chunks)
	return m, nil
}

func (m Model) viewDocuments() string {
	stats := m.app.sess.Stats
	lines := []string{
		titleStyle.Render("Document Management"),
		"",
		"Enter a directory to load, split and index its documents.",
		"Supported formats: TXT, PDF.",
		"",
		inputBoxStyle.Render(m.docs.dirInput.View()),
		"",
		fmt.Sprintf("Documents processed: %s", counterStyle.Render(fmt.Sprintf("%d", stats.DocumentsProcessed))),
		fmt.Sprintf("Text chunks:         %s", counterStyle.Render(fmt.Sprintf("%d", stats.Chunks))),
	}
	return strings.Join(lines, "\n")
}
