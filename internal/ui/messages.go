package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// linesMsg carries rendered output lines from the poll loop.
type linesMsg []string

type clearLinesMsg struct{}

// matchStatusMsg is the one line score summary, empty when no match is running.
type matchStatusMsg string

type clearStatusMessageMsg struct{}

// refreshMsg redraws the relative "updated" time in the status bar.
type refreshMsg time.Time

type statusMsg struct {
	Message string
	Err     bool
}

func clearErrorAfter(t time.Duration) tea.Cmd {
	return tea.Tick(t, func(_ time.Time) tea.Msg {
		return clearStatusMessageMsg{}
	})
}

func refreshAfter(t time.Duration) tea.Cmd {
	return tea.Tick(t, func(now time.Time) tea.Msg {
		return refreshMsg(now)
	})
}

func setStatusMessage(msg string, err bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{Message: msg, Err: err}
	}
}
