package scrape

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/leighmacdonald/hltv-live/internal/match"
)

// Selectors for the live scorebot widget on the match page.
const (
	selScorebot     = ".scorebot"
	selTeamCT       = ".ctTeamHeaderBg .teamName"
	selTeamT        = ".tTeamHeaderBg .teamName"
	selScoreCT      = ".ctScore"
	selScoreT       = ".tScore"
	selCurrentRound = ".currentRoundText"
	selRoundText    = ".roundText"
	selGameLog      = ".list.desktop .gamelogBox"
	selPlayersCT    = ".ctPlayerBg"
	selPlayersT     = ".tPlayerBg"
	selHistoryIcons = ".historyIcon img"
	selName         = ".nameCell"
	selKills        = ".killCell"
	selDeaths       = ".deathCell"
	selAssists      = ".assistCell"
	selADR          = ".adrCell"
	selMoney        = ".moneyCell"
	selHP           = ".hp-text"

	defaultStat = "0"
	defaultHP   = "100"
)

// Parse builds a snapshot from the html of a match page. Missing elements fall back to
// placeholder values, so only unreadable input is an error.
func Parse(reader io.Reader, observedAt time.Time) (match.Snapshot, error) {
	doc, errDoc := goquery.NewDocumentFromReader(reader)
	if errDoc != nil {
		return match.Snapshot{}, errors.Join(errDoc, ErrParse)
	}

	return FromDocument(doc, observedAt), nil
}

// FromDocument extracts a snapshot from an already parsed document.
func FromDocument(doc *goquery.Document, observedAt time.Time) match.Snapshot {
	currentRound := doc.Find(selCurrentRound).First()

	snapshot := match.Snapshot{
		TeamA:         textOr(doc.Find(selTeamCT).First(), match.DefaultTeamA),
		TeamB:         textOr(doc.Find(selTeamT).First(), match.DefaultTeamB),
		ScoreA:        textOr(doc.Find(selScoreCT).First(), match.DefaultScore),
		ScoreB:        textOr(doc.Find(selScoreT).First(), match.DefaultScore),
		Map:           match.InferMap(currentRound.Text()),
		RoundLabel:    textOr(doc.Find(selRoundText).First(), match.DefaultRound),
		CurrentRound:  textOr(currentRound, match.DefaultRound),
		LogEntries:    parseGameLog(doc, observedAt),
		RoundHistory:  parseRoundHistory(doc),
		HasLiveSource: doc.Find(selScorebot).Length() > 0,
	}

	parsePlayers(doc.Find(selPlayersCT), match.CT, &snapshot.Scoreboard)
	parsePlayers(doc.Find(selPlayersT), match.T, &snapshot.Scoreboard)

	return snapshot
}

func textOr(selection *goquery.Selection, fallback string) string {
	if selection.Length() == 0 {
		return fallback
	}

	text := strings.TrimSpace(selection.Text())
	if text == "" {
		return fallback
	}

	return text
}

func parseGameLog(doc *goquery.Document, observedAt time.Time) []match.LogEntry {
	var entries []match.LogEntry

	doc.Find(selGameLog).Each(func(_ int, selection *goquery.Selection) {
		className, _ := selection.Attr("class")
		if entry, ok := match.NewLogEntry(selection.Text(), className, observedAt); ok {
			entries = append(entries, entry)
		}
	})

	return match.Window(entries, match.MaxLogEntries)
}

func parsePlayers(rows *goquery.Selection, team match.Team, board *match.Scoreboard) {
	rows.Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find(selName).First().Text())
		if name == "" {
			return
		}

		board.Set(name, match.PlayerStats{
			Kills:   textOr(row.Find(selKills).First(), defaultStat),
			Deaths:  textOr(row.Find(selDeaths).First(), defaultStat),
			Assists: textOr(row.Find(selAssists).First(), defaultStat),
			ADR:     textOr(row.Find(selADR).First(), defaultStat),
			Money:   money(row.Find(selMoney).First()),
			HP:      textOr(row.Find(selHP).First(), defaultHP),
			Team:    team,
		})
	})
}

func money(selection *goquery.Selection) string {
	value := strings.TrimSpace(strings.Replace(selection.Text(), "$", "", 1))
	if value == "" {
		return defaultStat
	}

	return value
}

func parseRoundHistory(doc *goquery.Document) []match.RoundOutcome {
	var history []match.RoundOutcome

	doc.Find(selHistoryIcons).Each(func(_ int, icon *goquery.Selection) {
		src, found := icon.Attr("src")
		if !found {
			return
		}

		if outcome, ok := match.OutcomeFromIcon(src); ok {
			history = append(history, outcome)
		}
	})

	return match.Window(history, match.MaxRoundHistory)
}
