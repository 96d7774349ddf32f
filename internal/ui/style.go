package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Success styles positive results.
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	// Failure styles failed results.
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	// Muted styles skipped or secondary text.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
