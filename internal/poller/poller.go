// Package poller drives a match source on a fixed interval and routes each snapshot through the
// differ and renderer to a display sink.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/leighmacdonald/hltv-live/internal/metrics"
	"github.com/leighmacdonald/hltv-live/internal/render"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
)

const DefaultInterval = 3 * time.Second

var ErrStartup = errors.New("failed to start live match")

type State int

const (
	Idle State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

type Option func(l *Loop)

func WithInterval(interval time.Duration) Option {
	return func(l *Loop) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

func WithRenderer(renderer render.Renderer) Option {
	return func(l *Loop) {
		l.renderer = renderer
	}
}

// WithScoreboardEvery sets how many incremental ticks pass between scoreboard refreshes.
func WithScoreboardEvery(ticks int) Option {
	return func(l *Loop) {
		l.differ = match.NewDiffer(ticks)
	}
}

// Loop polls a single match at a time. Starting another match stops the current one first, so at
// most one source and one ticker are ever alive.
//
// lifecycle serialises Start and Stop. mu guards the fields shared with the tick goroutine and is
// never held while calling out to the source or the sink.
type Loop struct {
	lifecycle sync.Mutex
	mu        sync.RWMutex
	state     State
	matchID   string
	current   *match.Snapshot
	updatedAt time.Time
	tick      int
	source    scrape.Source
	cancel    context.CancelFunc
	done      chan struct{}

	opener   scrape.Opener
	sink     Sink
	renderer render.Renderer
	differ   match.Differ
	interval time.Duration
}

func New(opener scrape.Opener, sink Sink, opts ...Option) *Loop {
	loop := &Loop{
		opener:   opener,
		sink:     sink,
		renderer: render.New(),
		differ:   match.NewDiffer(match.DefaultScoreboardEvery),
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(loop)
	}

	return loop
}

// Start begins polling the match identified by input, which may be a bare id or a match url. The
// first snapshot is polled before returning. ctx bounds the whole polling session.
func (l *Loop) Start(ctx context.Context, input string) error {
	matchID, errID := match.ParseMatchID(input)
	if errID != nil {
		return errID
	}

	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if errStop := l.stop(); errStop != nil {
		slog.Warn("Failed to cleanly stop previous match", slog.String("error", errStop.Error()))
	}

	l.setState(Starting)
	l.sink.Clear()
	l.sink.WriteLines(l.renderer.Banner("🔴 STARTING HLTV LIVE MATCH CONSOLE")...)
	l.sink.WriteLines(
		l.renderer.Info("Match ID: "+matchID),
		l.renderer.Info("Connecting to the match page..."))

	source, errOpen := l.opener.Open(ctx, matchID)
	if errOpen != nil {
		metrics.Starts.WithLabelValues("error").Inc()
		slog.Error("Failed to open match source", slog.String("match_id", matchID), slog.String("error", errOpen.Error()))
		l.sink.WriteLines(l.renderer.Error("Failed to start live match: " + errOpen.Error()))
		l.setState(Idle)

		return errors.Join(errOpen, ErrStartup)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.mu.Lock()
	l.source = source
	l.matchID = matchID
	l.current = nil
	l.tick = 0
	l.cancel = cancel
	l.done = done
	l.state = Running
	l.mu.Unlock()

	metrics.Starts.WithLabelValues("ok").Inc()
	metrics.Running.Set(1)
	slog.Info("Started live match", slog.String("match_id", matchID), slog.Duration("interval", l.interval))
	l.sink.WriteLines(l.renderer.Info("✅ Match page loaded, searching for live data"))

	l.poll(pollCtx)

	go l.run(pollCtx, done)

	return nil
}

// Stop cancels polling, waits for any in-flight tick to finish and releases the source. It is
// safe to call in any state; stopping an idle loop does nothing.
func (l *Loop) Stop() error {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	return l.stop()
}

func (l *Loop) stop() error {
	l.mu.Lock()
	if l.state == Idle {
		l.mu.Unlock()

		return nil
	}

	l.state = Stopping
	cancel, done, source, matchID := l.cancel, l.done, l.source, l.matchID
	l.cancel, l.done, l.source = nil, nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}

	var errClose error
	if source != nil {
		if err := source.Close(); err != nil {
			slog.Error("Failed to close match source", slog.String("error", err.Error()))
			errClose = err
		}
	}

	l.mu.Lock()
	l.current = nil
	l.tick = 0
	l.matchID = ""
	l.updatedAt = time.Time{}
	l.state = Idle
	l.mu.Unlock()

	metrics.Running.Set(0)
	slog.Info("Stopped live match", slog.String("match_id", matchID))
	l.sink.WriteLines(l.renderer.Info("🔴 Live match stopped"))
	l.sink.SetStatus("")

	return errClose
}

// run ticks until cancelled. A tick that outlasts the interval causes the ticker to drop the
// overlapping ticks rather than queue them.
func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.poll(ctx)
		}
	}
}

// poll performs a single extract, diff and render cycle. Extraction failures are logged and the
// tick skipped; the next tick simply tries again.
func (l *Loop) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	l.mu.RLock()
	source := l.source
	l.mu.RUnlock()

	if source == nil {
		return
	}

	snapshot, errExtract := source.Extract(ctx)
	if errExtract != nil {
		metrics.Ticks.WithLabelValues("error").Inc()
		slog.Warn("Failed to extract live data", slog.String("error", errExtract.Error()))

		return
	}

	l.mu.Lock()
	if ctx.Err() != nil {
		l.mu.Unlock()

		return
	}

	if l.current != nil {
		l.tick++
	}

	decision := l.differ.Diff(l.current, snapshot, l.tick)
	l.current = &snapshot
	l.updatedAt = time.Now()
	l.mu.Unlock()

	lines := l.renderer.Decision(decision)
	if decision.Kind == match.FullRender && !snapshot.HasLiveSource {
		lines = append([]string{l.renderer.Info("No live scorebot on the match page, it may not have started yet")}, lines...)
	}

	if len(lines) > 0 {
		l.sink.WriteLines(lines...)
	}
	l.sink.SetStatus(l.renderer.Status(snapshot))

	metrics.Ticks.WithLabelValues("ok").Inc()
	metrics.Renders.WithLabelValues(decision.Kind.String()).Inc()
	if decision.Kind == match.FullRender {
		metrics.LogEntries.Add(float64(len(snapshot.LogEntries)))
	} else {
		metrics.LogEntries.Add(float64(len(decision.NewEntries)))
	}
}

// Clear empties the sink and redraws the match header if a match is being shown.
func (l *Loop) Clear() {
	l.sink.Clear()

	if snapshot, ok := l.Current(); ok {
		l.sink.WriteLines(l.renderer.Header(snapshot)...)
	}
}

// RecentLog returns the copyable projection of the current game log. The bool is false when there
// is no match data yet.
func (l *Loop) RecentLog() (string, bool) {
	snapshot, ok := l.Current()
	if !ok {
		return "", false
	}

	return l.renderer.RecentLog(snapshot), true
}

// Current returns the most recently rendered snapshot.
func (l *Loop) Current() (match.Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return match.Snapshot{}, false
	}

	return *l.current, true
}

func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state
}

func (l *Loop) MatchID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.matchID
}

// UpdatedAt is when the current snapshot was taken, zero if there is none.
func (l *Loop) UpdatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.updatedAt
}

func (l *Loop) setState(state State) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
}
