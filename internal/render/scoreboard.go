package render

import (
	"fmt"
	"strings"

	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

const (
	nameWidth = 11
	nameTail  = "..."
)

type column struct {
	title string
	width int
	value func(stats match.PlayerStats) string
}

// Name is handled separately as it is the only left aligned, truncated column.
var statColumns = []column{
	{title: "K", width: 2, value: func(s match.PlayerStats) string { return s.Kills }},
	{title: "D", width: 2, value: func(s match.PlayerStats) string { return s.Deaths }},
	{title: "A", width: 2, value: func(s match.PlayerStats) string { return s.Assists }},
	{title: "ADR", width: 5, value: func(s match.PlayerStats) string { return s.ADR }},
	{title: "Money", width: 6, value: func(s match.PlayerStats) string { return s.Money }},
	{title: "HP", width: 2, value: func(s match.PlayerStats) string { return s.HP }},
}

// PlayerName fits a name into the player column: long names are cut to 8 characters followed by
// an ellipsis, short ones are padded with spaces.
func PlayerName(name string) string {
	if ansi.PrintableRuneWidth(name) > nameWidth {
		return truncate.StringWithTail(name, nameWidth, nameTail)
	}

	return padding.String(name, nameWidth)
}

// alignRight pads a value on the left. Values wider than the column are kept whole.
func alignRight(value string, width int) string {
	return fmt.Sprintf("%*s", width, value)
}

func border(left string, mid string, right string) string {
	parts := []string{strings.Repeat("─", nameWidth+2)}
	for _, col := range statColumns {
		parts = append(parts, strings.Repeat("─", col.width+2))
	}

	return left + strings.Join(parts, mid) + right
}

func tableRow(cells []string) string {
	return "│ " + strings.Join(cells, " │ ") + " │"
}

func headerRow() string {
	cells := []string{padding.String("Player", nameWidth)}
	for _, col := range statColumns {
		cells = append(cells, padding.String(col.title, uint(col.width)))
	}

	return tableRow(cells)
}

// PlayerRow renders a single scoreboard table row.
func PlayerRow(row match.PlayerRow) string {
	cells := []string{PlayerName(row.Name)}
	for _, col := range statColumns {
		cells = append(cells, alignRight(col.value(row.Stats), col.width))
	}

	return tableRow(cells)
}

func teamTable(title string, rows []match.PlayerRow) []string {
	lines := []string{
		title,
		border("┌", "┬", "┐"),
		headerRow(),
		border("├", "┼", "┤"),
	}
	for _, row := range rows {
		lines = append(lines, PlayerRow(row))
	}

	return append(lines, border("└", "┴", "┘"), "")
}

// Scoreboard renders the CT table followed by the T table.
func (r Renderer) Scoreboard(snapshot match.Snapshot) []string {
	lines := []string{"", "📊 LIVE SCOREBOARD", lightRule}
	lines = append(lines, teamTable(
		fmt.Sprintf("🔵 %s (CT) - %s", strings.ToUpper(snapshot.TeamA), snapshot.ScoreA),
		snapshot.Scoreboard.Team(match.CT))...)

	return append(lines, teamTable(
		fmt.Sprintf("🔴 %s (T) - %s", strings.ToUpper(snapshot.TeamB), snapshot.ScoreB),
		snapshot.Scoreboard.Team(match.T))...)
}
