package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/leighmacdonald/hltv-live/internal/ui/styles"
)

type statusBarModel struct {
	width       int
	matchID     string
	matchStatus string
	updatedAt   time.Time
	statusMsg   string
	statusError bool
	version     string
	help        help.Model
}

func newStatusBarModel(version string) statusBarModel {
	return statusBarModel{version: version, help: help.New()}
}

func (m statusBarModel) View() string {
	args := []string{
		styles.StatusVersion.Render(m.version),
		styles.StatusMatch.Render(m.match()),
	}

	if !m.updatedAt.IsZero() {
		args = append(args, styles.StatusUpdated.Render("updated "+humanize.Time(m.updatedAt)))
	}

	args = append(args, m.status(), styles.StatusHelp.Render(m.help.ShortHelpView(defaultKeyMap.ShortHelp())))

	return lipgloss.NewStyle().Width(m.width).Background(styles.Black).Render(lipgloss.JoinHorizontal(lipgloss.Top, args...))
}

func (m statusBarModel) match() string {
	switch {
	case m.matchStatus != "":
		return m.matchStatus
	case m.matchID != "":
		return "Match " + m.matchID
	default:
		return "📡 HLTV Live"
	}
}

func (m statusBarModel) status() string {
	if m.statusMsg == "" {
		return ""
	}

	if m.statusError {
		return styles.StatusError.Render(m.statusMsg)
	}

	return styles.StatusMessage.Render(m.statusMsg)
}
