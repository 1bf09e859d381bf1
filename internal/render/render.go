// Package render turns match snapshots and diff decisions into lines of display text. Nothing
// here writes anywhere; callers forward the returned lines to a sink.
package render

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
)

const (
	lineWidth = 80
	// recentLogLimit is the number of entries exported by RecentLog.
	recentLogLimit = 50
)

var (
	heavyRule = strings.Repeat("═", lineWidth)
	lightRule = strings.Repeat("─", lineWidth)
)

// Glyphs used for each log category.
var categoryGlyphs = map[match.Category]string{
	match.Kill:       "🔫",
	match.RoundEnd:   "🏁",
	match.RoundStart: "▶",
	match.Bomb:       "💣",
	match.Quit:       "❌",
	match.Suicide:    "💀",
	match.Other:      "•",
}

var outcomeSymbols = map[match.RoundOutcome]string{
	match.CTWin:        "CT",
	match.TWin:         "T",
	match.BombExploded: "💣",
	match.BombDefused:  "🔧",
	match.TimeExpired:  "⏰",
}

// CategoryGlyph returns the icon shown in front of a log entry.
func CategoryGlyph(category match.Category) string {
	glyph, found := categoryGlyphs[category]
	if !found {
		return categoryGlyphs[match.Other]
	}

	return glyph
}

// OutcomeSymbol returns the round history strip symbol for a round outcome.
func OutcomeSymbol(outcome match.RoundOutcome) string {
	return outcomeSymbols[outcome]
}

type Option func(r *Renderer)

// WithClock overrides the time source used to stamp log lines.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithTimeFormat sets the layout of the time stamp prefix. An empty layout keeps the default.
func WithTimeFormat(layout string) Option {
	return func(r *Renderer) {
		if layout != "" {
			r.timeFormat = layout
		}
	}
}

// Renderer formats snapshots. It holds no state besides its options and is safe for concurrent use.
type Renderer struct {
	now        func() time.Time
	timeFormat string
}

func New(opts ...Option) Renderer {
	renderer := Renderer{now: time.Now, timeFormat: time.TimeOnly}
	for _, opt := range opts {
		opt(&renderer)
	}

	return renderer
}

func (r Renderer) stamp() string {
	return r.now().Format(r.timeFormat)
}

// Decision renders the output for a diff decision. A full render shows everything, an incremental
// one only the new log entries plus the scoreboard when a refresh is due.
func (r Renderer) Decision(decision match.Decision) []string {
	if decision.Kind == match.FullRender {
		lines := r.Header(decision.Snapshot)
		lines = append(lines, r.Scoreboard(decision.Snapshot)...)

		return append(lines, r.Log(decision.Snapshot.LogEntries)...)
	}

	lines := r.Delta(decision.NewEntries)
	if decision.RefreshScoreboard {
		lines = append(lines, r.Scoreboard(decision.Snapshot)...)
	}

	return lines
}

func (r Renderer) Header(snapshot match.Snapshot) []string {
	lines := []string{
		"",
		heavyRule,
		fmt.Sprintf("🏆 %s vs %s", strings.ToUpper(snapshot.TeamA), strings.ToUpper(snapshot.TeamB)),
		fmt.Sprintf("📍 Map: %s | Round: %s | Score: %s - %s",
			strings.ToUpper(string(snapshot.Map)), snapshot.CurrentRound, snapshot.ScoreA, snapshot.ScoreB),
	}

	if len(snapshot.RoundHistory) > 0 {
		symbols := make([]string, len(snapshot.RoundHistory))
		for idx, outcome := range snapshot.RoundHistory {
			symbols[idx] = OutcomeSymbol(outcome)
		}
		lines = append(lines, "📊 Recent rounds: "+strings.Join(symbols, " "))
	}

	return append(lines, heavyRule, "")
}

func (r Renderer) LogEntry(entry match.LogEntry) string {
	return fmt.Sprintf("%s %s %s", r.stamp(), CategoryGlyph(entry.Category), entry.Text)
}

// Log renders the full game log newest first.
func (r Renderer) Log(entries []match.LogEntry) []string {
	lines := []string{"🎮 LIVE GAME LOG", lightRule}
	lines = append(lines, r.Delta(entries)...)

	return append(lines, "")
}

// Delta renders entries that are stored oldest first as newest first, the same order Log uses.
func (r Renderer) Delta(entries []match.LogEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range slices.Backward(entries) {
		lines = append(lines, r.LogEntry(entry))
	}

	return lines
}

func (r Renderer) Banner(message string) []string {
	return []string{"", heavyRule, message, heavyRule, ""}
}

func (r Renderer) Info(message string) string {
	return fmt.Sprintf("%s ℹ️  %s", r.stamp(), message)
}

func (r Renderer) Error(message string) string {
	return fmt.Sprintf("%s ❌ %s", r.stamp(), message)
}

// Status is a compact single line summary of the score, map and round.
func (r Renderer) Status(snapshot match.Snapshot) string {
	status := fmt.Sprintf("%s %s:%s %s", snapshot.TeamA, snapshot.ScoreA, snapshot.ScoreB, snapshot.TeamB)
	if snapshot.Map != "" && snapshot.Map != match.Unknown {
		status += " on " + string(snapshot.Map)
	}

	if round := statusRound(snapshot.CurrentRound); round != "" {
		status += " - " + round
	}

	return status
}

// statusRound normalises the round text to "Round N". The page sometimes includes the prefix itself.
func statusRound(currentRound string) string {
	currentRound = strings.TrimSpace(currentRound)
	if currentRound == "" || currentRound == match.DefaultRound {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(currentRound), "round") {
		return currentRound
	}

	return "Round " + currentRound
}

// RecentLog exports the newest entries of the snapshot, newest first, as "CATEGORY: text" lines.
func (r Renderer) RecentLog(snapshot match.Snapshot) string {
	recent := match.Window(snapshot.LogEntries, recentLogLimit)
	lines := make([]string, 0, len(recent))
	for _, entry := range slices.Backward(recent) {
		lines = append(lines, strings.ToUpper(string(entry.Category))+": "+entry.Text)
	}

	return strings.Join(lines, "\n")
}
