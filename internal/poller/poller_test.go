package poller_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/leighmacdonald/hltv-live/internal/poller"
	"github.com/leighmacdonald/hltv-live/internal/render"
	"github.com/leighmacdonald/hltv-live/internal/scrape"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	clears int
	status string
}

func (s *recordingSink) WriteLines(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.lines = nil
}

func (s *recordingSink) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.lines)
}

func (s *recordingSink) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *recordingSink) Contains(needle string) bool {
	for _, line := range s.Lines() {
		if strings.Contains(line, needle) {
			return true
		}
	}

	return false
}

// scriptedSource returns its snapshots in order, repeating the last one once exhausted. Extract
// calls listed in failOn return an error instead.
type scriptedSource struct {
	mu        sync.Mutex
	snapshots []match.Snapshot
	failOn    map[int]bool
	calls     int
	closed    int
}

func (s *scriptedSource) Extract(_ context.Context) (match.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.calls
	s.calls++

	if s.failOn[call] {
		return match.Snapshot{}, errBoom
	}

	return s.snapshots[min(call, len(s.snapshots)-1)], nil
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++

	return nil
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func (s *scriptedSource) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// gatedSource extracts freely once, then waits for a release before each further extract.
type gatedSource struct {
	scriptedSource
	release chan struct{}
}

func newGatedSource(entries int) *gatedSource {
	snapshots := make([]match.Snapshot, entries)
	texts := make([]string, 0, entries)
	for idx := range entries {
		texts = append(texts, fmt.Sprintf("e%d", idx))
		snapshots[idx] = snapshot(texts...)
	}

	return &gatedSource{scriptedSource: scriptedSource{snapshots: snapshots}, release: make(chan struct{})}
}

func (s *gatedSource) Extract(ctx context.Context) (match.Snapshot, error) {
	if s.Calls() > 0 {
		select {
		case <-s.release:
		case <-ctx.Done():
			return match.Snapshot{}, ctx.Err()
		}
	}

	return s.scriptedSource.Extract(ctx)
}

func snapshot(texts ...string) match.Snapshot {
	entries := make([]match.LogEntry, len(texts))
	for idx, text := range texts {
		entries[idx] = match.LogEntry{Text: text, Category: match.Other}
	}

	return match.Snapshot{
		TeamA:        "Spirit",
		TeamB:        "MOUZ",
		ScoreA:       "7",
		ScoreB:       "5",
		Map:          match.Mirage,
		CurrentRound: "Round 13",
		LogEntries:   entries,
	}
}

func openerFor(sources ...scrape.Source) scrape.Opener {
	var (
		mu   sync.Mutex
		next int
	)

	return scrape.OpenerFunc(func(_ context.Context, _ string) (scrape.Source, error) {
		mu.Lock()
		defer mu.Unlock()
		source := sources[next]
		next++

		return source, nil
	})
}

func newLoop(opener scrape.Opener, sink poller.Sink, interval time.Duration) *poller.Loop {
	fixed := time.Date(2025, 1, 2, 13, 4, 5, 0, time.UTC)
	renderer := render.New(render.WithClock(func() time.Time { return fixed }))

	return poller.New(opener, sink, poller.WithInterval(interval), poller.WithRenderer(renderer))
}

func TestStartInvalidInput(t *testing.T) {
	sink := &recordingSink{}
	loop := newLoop(openerFor(), sink, time.Hour)

	err := loop.Start(context.Background(), "not a match")
	require.ErrorIs(t, err, match.ErrInvalidMatchID)
	require.Equal(t, poller.Idle, loop.State())
	require.Empty(t, sink.Lines())
	require.Zero(t, sink.clears)
}

func TestStartOpenFailure(t *testing.T) {
	sink := &recordingSink{}
	opener := scrape.OpenerFunc(func(_ context.Context, _ string) (scrape.Source, error) {
		return nil, errBoom
	})
	loop := newLoop(opener, sink, time.Hour)

	err := loop.Start(context.Background(), "2382614")
	require.ErrorIs(t, err, poller.ErrStartup)
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, poller.Idle, loop.State())
	require.True(t, sink.Contains("Failed to start live match: boom"))

	_, ok := loop.Current()
	require.False(t, ok)
}

func TestStartRendersImmediately(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa", "bbbb")}}
	loop := newLoop(openerFor(source), sink, time.Hour)

	require.NoError(t, loop.Start(context.Background(), "https://www.hltv.org/matches/2382614/spirit-vs-mouz"))
	defer func() { require.NoError(t, loop.Stop()) }()

	require.Equal(t, poller.Running, loop.State())
	require.Equal(t, "2382614", loop.MatchID())
	require.Equal(t, 1, source.Calls())
	require.True(t, sink.Contains("Match ID: 2382614"))
	require.True(t, sink.Contains("🏆 SPIRIT vs MOUZ"))
	require.True(t, sink.Contains("📊 LIVE SCOREBOARD"))
	require.True(t, sink.Contains("No live scorebot"))
	require.Contains(t, sink.Lines(), "13:04:05 • bbbb")
	require.Equal(t, "Spirit 7:5 MOUZ on mirage - Round 13", sink.Status())
	require.False(t, loop.UpdatedAt().IsZero())

	current, ok := loop.Current()
	require.True(t, ok)
	require.Len(t, current.LogEntries, 2)
}

func TestTicksWriteOnlyNewEntries(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{
		snapshot("aaaa", "bbbb"),
		snapshot("aaaa", "bbbb", "cccc", "dddd"),
	}}
	loop := newLoop(openerFor(source), sink, 10*time.Millisecond)

	require.NoError(t, loop.Start(context.Background(), "2382614"))

	require.Eventually(t, func() bool {
		return sink.Contains("dddd")
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, loop.Stop())

	lines := sink.Lines()
	dIdx := slices.Index(lines, "13:04:05 • dddd")
	cIdx := slices.Index(lines, "13:04:05 • cccc")
	require.NotEqual(t, -1, dIdx)
	require.Equal(t, dIdx+1, cIdx, "new entries are written newest first")

	headers := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "🏆") {
			headers++
		}
	}
	require.Equal(t, 1, headers, "only the first snapshot gets a full render")
}

func TestScoreboardRefreshSchedule(t *testing.T) {
	sink := &recordingSink{}
	first, second := newGatedSource(4), newGatedSource(3)
	fixed := time.Date(2025, 1, 2, 13, 4, 5, 0, time.UTC)
	loop := poller.New(openerFor(first, second), sink,
		poller.WithInterval(5*time.Millisecond),
		poller.WithScoreboardEvery(2),
		poller.WithRenderer(render.New(render.WithClock(func() time.Time { return fixed }))))

	scoreboards := func() int {
		count := 0
		for _, line := range sink.Lines() {
			if line == "📊 LIVE SCOREBOARD" {
				count++
			}
		}

		return count
	}

	step := func(source *gatedSource, entry string) {
		source.release <- struct{}{}
		require.Eventually(t, func() bool {
			return sink.Contains("• " + entry)
		}, time.Second, time.Millisecond)
	}

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	require.Equal(t, 1, scoreboards())

	step(first, "e1")
	require.Equal(t, 1, scoreboards())
	step(first, "e2")
	require.Equal(t, 2, scoreboards())
	step(first, "e3")
	require.Equal(t, 2, scoreboards())

	// Restarting resets the tick count, the first incremental tick is not a refresh.
	require.NoError(t, loop.Start(context.Background(), "2382615"))
	require.Equal(t, 1, first.Closed())
	require.Equal(t, 1, scoreboards())

	step(second, "e1")
	require.Equal(t, 1, scoreboards())
	step(second, "e2")
	require.Equal(t, 2, scoreboards())

	require.NoError(t, loop.Stop())
}

func TestExtractFailureKeepsPolling(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{
		snapshots: []match.Snapshot{
			snapshot("aaaa"),
			snapshot("aaaa"),
			snapshot("aaaa"),
			snapshot("aaaa", "zzzz"),
		},
		failOn: map[int]bool{1: true, 2: true},
	}
	loop := newLoop(openerFor(source), sink, 10*time.Millisecond)

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	defer func() { require.NoError(t, loop.Stop()) }()

	require.Eventually(t, func() bool {
		return sink.Contains("zzzz")
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, poller.Running, loop.State())
}

func TestFailedFirstExtractLeavesNoSnapshot(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa")}, failOn: map[int]bool{0: true}}
	loop := newLoop(openerFor(source), sink, time.Hour)

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	defer func() { require.NoError(t, loop.Stop()) }()

	require.Equal(t, poller.Running, loop.State())
	_, ok := loop.Current()
	require.False(t, ok)
	_, ok = loop.RecentLog()
	require.False(t, ok)
}

func TestStopIdempotent(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa")}}
	loop := newLoop(openerFor(source), sink, time.Hour)

	require.NoError(t, loop.Stop())
	require.Empty(t, sink.Lines())

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	require.NoError(t, loop.Stop())
	require.NoError(t, loop.Stop())

	require.Equal(t, 1, source.Closed())
	require.Equal(t, poller.Idle, loop.State())
	require.Empty(t, loop.MatchID())
	require.Empty(t, sink.Status())

	_, ok := loop.Current()
	require.False(t, ok)

	stopped := 0
	for _, line := range sink.Lines() {
		if strings.Contains(line, "Live match stopped") {
			stopped++
		}
	}
	require.Equal(t, 1, stopped)
}

func TestNoTicksAfterStop(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa")}}
	loop := newLoop(openerFor(source), sink, 5*time.Millisecond)

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	require.Eventually(t, func() bool { return source.Calls() > 2 }, time.Second, time.Millisecond)
	require.NoError(t, loop.Stop())

	calls := source.Calls()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, source.Calls())
}

func TestRestartClosesPreviousSource(t *testing.T) {
	sink := &recordingSink{}
	first := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa")}}
	second := &scriptedSource{snapshots: []match.Snapshot{snapshot("bbbb")}}
	loop := newLoop(openerFor(first, second), sink, time.Hour)

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	require.NoError(t, loop.Start(context.Background(), "2382615"))
	defer func() { require.NoError(t, loop.Stop()) }()

	require.Equal(t, 1, first.Closed())
	require.Zero(t, second.Closed())
	require.Equal(t, "2382615", loop.MatchID())

	current, ok := loop.Current()
	require.True(t, ok)
	require.Equal(t, "bbbb", current.LogEntries[0].Text)
}

func TestCancelledContextStopsTicking(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa")}}
	loop := newLoop(openerFor(source), sink, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, loop.Start(ctx, "2382614"))
	cancel()

	require.NoError(t, loop.Stop())
	require.Equal(t, 1, source.Closed())
}

func TestClearAndRecentLog(t *testing.T) {
	sink := &recordingSink{}
	source := &scriptedSource{snapshots: []match.Snapshot{snapshot("aaaa", "bbbb")}}
	loop := newLoop(openerFor(source), sink, time.Hour)

	loop.Clear()
	require.Empty(t, sink.Lines())

	require.NoError(t, loop.Start(context.Background(), "2382614"))
	defer func() { require.NoError(t, loop.Stop()) }()

	loop.Clear()
	lines := sink.Lines()
	require.Contains(t, lines, "🏆 SPIRIT vs MOUZ")
	require.NotContains(t, lines, "📊 LIVE SCOREBOARD")

	recent, ok := loop.RecentLog()
	require.True(t, ok)
	require.Equal(t, "OTHER: bbbb\nOTHER: aaaa", recent)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := poller.NewWriterSink(&buf)

	sink.WriteLines("one", "two")
	sink.Clear()
	sink.SetStatus("ignored")
	sink.WriteLines("three")

	require.Equal(t, "one\ntwo\nthree\n", buf.String())
}
