package poller

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

func renderPlay(feed games.Feed, play games.Play, cfg channels.Config) string {
	text := strings.TrimSpace(play.Description)
	if text == "" {
		text = strings.ReplaceAll(play.EventType, "_", " ")
	}
	if play.IsScoringPlay || (cfg.ShowScoreOnThirdOut && play.Outs == 3) {
		text += "\n" + scoreLine(feed.AwayTeam, play.AwayScore, feed.HomeTeam, play.HomeScore)
	}
	return text
}

// renderAdvisory titles the event and drops a description that only repeats it.
func renderAdvisory(feed games.Feed, adv games.Advisory) string {
	text := adv.Event
	if desc := strings.TrimSpace(adv.Description); desc != "" && strings.ReplaceAll(desc, ".", "") != adv.Event {
		text += ": " + desc
	}
	if adv.IsScoringPlay {
		text += "\n" + scoreLine(feed.AwayTeam, adv.AwayScore, feed.HomeTeam, adv.HomeScore)
	}
	return text
}

func renderInning(in games.Inning) string {
	return fmt.Sprintf("%s of the %s", in.State, in.Ordinal)
}

func scoreLine(away string, awayScore int, home string, homeScore int) string {
	return fmt.Sprintf("%s %d, %s %d", teamOr(away, "Away"), awayScore, teamOr(home, "Home"), homeScore)
}

func renderStart(feed games.Feed) string {
	return fmt.Sprintf("Now following %s at %s.", teamOr(feed.AwayTeam, "Away"), teamOr(feed.HomeTeam, "Home"))
}

func renderFinal(feed games.Feed) string {
	away, home := feed.Score()
	line := scoreLine(feed.AwayTeam, away, feed.HomeTeam, home)
	switch {
	case feed.Status.Cancelled():
		return "Game cancelled. " + line
	case feed.Status.Suspended():
		return fmt.Sprintf("Game %s. %s", strings.ToLower(feed.Status.Detailed), line)
	default:
		return "Final: " + line
	}
}

const (
	connectionLostText     = "Having trouble reaching the game feed. Updates may be delayed."
	connectionRestoredText = "Connection to the game feed restored."
)

func teamOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
