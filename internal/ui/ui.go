package ui

import (
	"context"
	"errors"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	clearMessageTimeout = time.Second * 10
	refreshInterval     = time.Second
	// maxLines bounds the scrollback, the oldest lines are dropped first.
	maxLines = 5000
)

var ErrUIExit = errors.New("ui error returned")

// Controller is the match poller driven by the key bindings. Its methods are only ever called
// from commands, never from within Update, as Start, Stop and Clear write back to the UI.
type Controller interface {
	Start(ctx context.Context, input string) error
	Stop() error
	Clear()
	RecentLog() (string, bool)
	MatchID() string
	UpdatedAt() time.Time
}

// UI is the terminal display. It implements the poller sink by forwarding output to the running
// program, so sink calls block until the program has accepted them.
type UI struct {
	program *tea.Program
	model   *rootModel
}

// New creates the UI. When initialMatch is set it is started as soon as the program runs.
func New(ctx context.Context, buildVersion string, initialMatch string) *UI {
	model := newRootModel(ctx, buildVersion, initialMatch)

	return &UI{
		model: model,
		program: tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithFPS(30)),
	}
}

// Run blocks until the user quits or the context is cancelled.
func (t *UI) Run(controller Controller) error {
	t.model.controller = controller

	if _, err := t.program.Run(); err != nil {
		return errors.Join(err, ErrUIExit)
	}

	return nil
}

func (t *UI) WriteLines(lines ...string) {
	t.program.Send(linesMsg(slices.Clone(lines)))
}

func (t *UI) Clear() {
	t.program.Send(clearLinesMsg{})
}

func (t *UI) SetStatus(status string) {
	t.program.Send(matchStatusMsg(status))
}
