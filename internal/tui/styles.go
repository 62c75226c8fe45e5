package tui

import "github.com/charmbracelet/lipgloss"

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("15")).Underline(true)

	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	counterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
