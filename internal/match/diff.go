package match

// DefaultScoreboardEvery is how many incremental ticks pass between full scoreboard renders.
const DefaultScoreboardEvery = 5

type DecisionKind int

const (
	// FullRender renders the header, scoreboard and the entire log.
	FullRender DecisionKind = iota
	// IncrementalRender renders only the log entries not yet shown.
	IncrementalRender
)

func (k DecisionKind) String() string {
	switch k {
	case FullRender:
		return "full"
	case IncrementalRender:
		return "incremental"
	default:
		return "unknown"
	}
}

// Decision describes what should be rendered for the next snapshot.
type Decision struct {
	Kind     DecisionKind
	Snapshot Snapshot
	// NewEntries is in chronological order, oldest first.
	NewEntries        []LogEntry
	RefreshScoreboard bool
}

// Differ compares successive snapshots. Entries are only compared by position, so if the page
// reorders or replaces entries without growing the log the change goes unnoticed.
type Differ struct {
	// ScoreboardEvery sets the scoreboard refresh period in incremental ticks. Zero disables it.
	ScoreboardEvery int
}

func NewDiffer(scoreboardEvery int) Differ {
	return Differ{ScoreboardEvery: scoreboardEvery}
}

// Diff computes the decision for next. A nil previous means this is the first snapshot seen.
// tick is the 1-based count of incremental updates since the loop started.
func (d Differ) Diff(previous *Snapshot, next Snapshot, tick int) Decision {
	if previous == nil {
		return Decision{Kind: FullRender, Snapshot: next}
	}

	newCount := max(0, len(next.LogEntries)-len(previous.LogEntries))
	newEntries := make([]LogEntry, newCount)
	copy(newEntries, next.LogEntries[len(next.LogEntries)-newCount:])

	return Decision{
		Kind:              IncrementalRender,
		Snapshot:          next,
		NewEntries:        newEntries,
		RefreshScoreboard: d.ScoreboardEvery > 0 && tick > 0 && tick%d.ScoreboardEvery == 0,
	}
}
