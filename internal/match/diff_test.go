package match_test

import (
	"testing"
	"time"

	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/stretchr/testify/require"
)

func entries(texts ...string) []match.LogEntry {
	now := time.Now()
	out := make([]match.LogEntry, len(texts))
	for idx, text := range texts {
		out[idx] = match.LogEntry{Text: text, Category: match.Other, Timestamp: now}
	}

	return out
}

func texts(entries []match.LogEntry) []string {
	out := make([]string, len(entries))
	for idx, entry := range entries {
		out[idx] = entry.Text
	}

	return out
}

func TestDiffFirstSnapshot(t *testing.T) {
	differ := match.NewDiffer(match.DefaultScoreboardEvery)
	next := match.Snapshot{LogEntries: entries("a", "b")}

	decision := differ.Diff(nil, next, 0)
	require.Equal(t, match.FullRender, decision.Kind)
	require.Equal(t, next, decision.Snapshot)
	require.Empty(t, decision.NewEntries)
}

func TestDiffSameSnapshot(t *testing.T) {
	differ := match.NewDiffer(match.DefaultScoreboardEvery)
	snap := match.Snapshot{LogEntries: entries("a", "b", "c")}

	decision := differ.Diff(&snap, snap, 1)
	require.Equal(t, match.IncrementalRender, decision.Kind)
	require.Empty(t, decision.NewEntries)
}

func TestDiffGrowth(t *testing.T) {
	differ := match.NewDiffer(match.DefaultScoreboardEvery)
	previous := match.Snapshot{LogEntries: entries("a", "b", "c")}
	next := match.Snapshot{LogEntries: entries("a", "b", "c", "d", "e")}

	decision := differ.Diff(&previous, next, 1)
	require.Equal(t, match.IncrementalRender, decision.Kind)
	require.Equal(t, []string{"d", "e"}, texts(decision.NewEntries))

	// The returned slice must not alias the snapshot.
	decision.NewEntries[0].Text = "changed"
	require.Equal(t, "d", next.LogEntries[3].Text)
}

func TestDiffShrink(t *testing.T) {
	differ := match.NewDiffer(match.DefaultScoreboardEvery)
	previous := match.Snapshot{LogEntries: entries("a", "b", "c", "d")}
	next := match.Snapshot{LogEntries: entries("x")}

	decision := differ.Diff(&previous, next, 1)
	require.Equal(t, match.IncrementalRender, decision.Kind)
	require.Empty(t, decision.NewEntries)

	decision = differ.Diff(&previous, match.Snapshot{}, 2)
	require.Empty(t, decision.NewEntries)
}

func TestDiffScoreboardPeriod(t *testing.T) {
	differ := match.NewDiffer(5)
	snap := match.Snapshot{}

	var refreshed []int
	for tick := 1; tick <= 12; tick++ {
		if differ.Diff(&snap, snap, tick).RefreshScoreboard {
			refreshed = append(refreshed, tick)
		}
	}
	require.Equal(t, []int{5, 10}, refreshed)

	disabled := match.NewDiffer(0)
	for tick := 1; tick <= 12; tick++ {
		require.False(t, disabled.Diff(&snap, snap, tick).RefreshScoreboard)
	}
}
