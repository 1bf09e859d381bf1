package match

// PlayerRow is a single named scoreboard entry.
type PlayerRow struct {
	Name  string
	Stats PlayerStats
}

// Scoreboard is a player name keyed table that keeps the order players were first seen in. The
// page lists players in a meaningful order so rows are never sorted.
type Scoreboard struct {
	rows  []PlayerRow
	index map[string]int
}

// Set adds the player, or replaces the stats of an existing player in place.
func (s *Scoreboard) Set(name string, stats PlayerStats) {
	if s.index == nil {
		s.index = map[string]int{}
	}

	if idx, found := s.index[name]; found {
		s.rows[idx].Stats = stats

		return
	}

	s.index[name] = len(s.rows)
	s.rows = append(s.rows, PlayerRow{Name: name, Stats: stats})
}

func (s Scoreboard) Get(name string) (PlayerStats, bool) {
	idx, found := s.index[name]
	if !found {
		return PlayerStats{}, false
	}

	return s.rows[idx].Stats, true
}

func (s Scoreboard) Len() int {
	return len(s.rows)
}

// Rows returns a copy of all rows in insertion order.
func (s Scoreboard) Rows() []PlayerRow {
	rows := make([]PlayerRow, len(s.rows))
	copy(rows, s.rows)

	return rows
}

// Team returns the rows belonging to a single side, in insertion order.
func (s Scoreboard) Team(team Team) []PlayerRow {
	var rows []PlayerRow
	for _, row := range s.rows {
		if row.Stats.Team == team {
			rows = append(rows, row)
		}
	}

	return rows
}
