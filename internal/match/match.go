// Package match holds the observable state of a live match as scraped from the match page,
// along with the Differ used to decide what needs to be rendered between two polls.
package match

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxLogEntries is the number of game log entries retained per snapshot.
	MaxLogEntries = 20
	// MaxRoundHistory is the number of round outcomes retained per snapshot.
	MaxRoundHistory = 15
	// minEntryLength is the length a log line must exceed to be kept.
	minEntryLength = 3

	DefaultTeamA = "Team 1"
	DefaultTeamB = "Team 2"
	DefaultScore = "0"
	DefaultRound = "Unknown"
)

var (
	ErrInvalidMatchID = errors.New("could not find a valid match id")

	matchIDRx = regexp.MustCompile(`(\d{6,})`)
)

// ParseMatchID extracts the numeric match id from either a bare id or a full match url.
func ParseMatchID(input string) (string, error) {
	found := matchIDRx.FindString(input)
	if found == "" {
		return "", ErrInvalidMatchID
	}

	return found, nil
}

type Team string

const (
	CT Team = "CT"
	T  Team = "T"
)

type Map string

const (
	Dust2    Map = "dust2"
	Mirage   Map = "mirage"
	Inferno  Map = "inferno"
	Ancient  Map = "ancient"
	Vertigo  Map = "vertigo"
	Nuke     Map = "nuke"
	Overpass Map = "overpass"
	Unknown  Map = "unknown"
)

// knownMaps is ordered by match priority.
var knownMaps = []Map{Dust2, Mirage, Inferno, Ancient, Vertigo, Nuke, Overpass}

// InferMap finds the first known map name contained in the round status text.
func InferMap(roundText string) Map {
	lowered := strings.ToLower(roundText)
	for _, mapName := range knownMaps {
		if strings.Contains(lowered, string(mapName)) {
			return mapName
		}
	}

	return Unknown
}

type Category string

const (
	Kill       Category = "kill"
	RoundStart Category = "round_start"
	RoundEnd   Category = "round_end"
	Quit       Category = "quit"
	Bomb       Category = "bomb"
	Suicide    Category = "suicide"
	Other      Category = "other"
)

type categoryMarker struct {
	marker   string
	category Category
}

// categoryMarkers is checked in order, first match wins.
var categoryMarkers = []categoryMarker{
	{marker: "playerKill", category: Kill},
	{marker: "roundStart", category: RoundStart},
	{marker: "winner", category: RoundEnd},
	{marker: "quitGame", category: Quit},
	{marker: "bombPlant", category: Bomb},
	{marker: "bomb", category: Bomb},
	{marker: "playerSuicide", category: Suicide},
}

// CategoryFromClass derives the log entry category from the raw class attribute of a game log element.
func CategoryFromClass(className string) Category {
	for _, marker := range categoryMarkers {
		if strings.Contains(className, marker.marker) {
			return marker.category
		}
	}

	return Other
}

type RoundOutcome int

const (
	CTWin RoundOutcome = iota
	TWin
	BombExploded
	BombDefused
	TimeExpired
)

// OutcomeFromIcon maps a round history icon source url to its outcome. ct_win must be tested
// before t_win as the latter is a substring of the former.
func OutcomeFromIcon(src string) (RoundOutcome, bool) {
	switch {
	case strings.Contains(src, "ct_win"):
		return CTWin, true
	case strings.Contains(src, "t_win"):
		return TWin, true
	case strings.Contains(src, "bomb_exploded"):
		return BombExploded, true
	case strings.Contains(src, "bomb_defused"):
		return BombDefused, true
	case strings.Contains(src, "stopwatch"):
		return TimeExpired, true
	default:
		return 0, false
	}
}

type LogEntry struct {
	Text     string
	Category Category
	// Timestamp is when the entry was observed, not when the in-game event happened.
	Timestamp time.Time
}

// NewLogEntry trims the raw text and reports false if the entry is too short to be meaningful.
func NewLogEntry(text string, className string, observedAt time.Time) (LogEntry, bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= minEntryLength {
		return LogEntry{}, false
	}

	return LogEntry{Text: text, Category: CategoryFromClass(className), Timestamp: observedAt}, true
}

type PlayerStats struct {
	Kills   string
	Deaths  string
	Assists string
	ADR     string
	Money   string
	HP      string
	Team    Team
}

// Snapshot is a single point in time capture of all observable match state.
type Snapshot struct {
	TeamA         string
	TeamB         string
	ScoreA        string
	ScoreB        string
	Map           Map
	RoundLabel    string
	CurrentRound  string
	LogEntries    []LogEntry
	Scoreboard    Scoreboard
	RoundHistory  []RoundOutcome
	HasLiveSource bool
}

// Window returns the newest limit items of the slice, evicting the oldest first.
func Window[T any](items []T, limit int) []T {
	if len(items) <= limit {
		return items
	}

	return items[len(items)-limit:]
}
