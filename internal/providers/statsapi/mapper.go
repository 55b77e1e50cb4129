package statsapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

func mapFeed(gameID string, r liveFeedResponse) games.Feed {
	if r.GamePk != 0 {
		gameID = strconv.Itoa(r.GamePk)
	}
	plays := make([]games.Play, 0, len(r.LiveData.Plays.AllPlays))
	var advisories []games.Advisory
	for _, p := range r.LiveData.Plays.AllPlays {
		plays = append(plays, mapPlay(p))
		advisories = appendAdvisories(advisories, p)
	}
	return games.Feed{
		GameID:    gameID,
		Status:    mapStatus(r.GameData.Status),
		StartTime: parseStart(r.GameData.Datetime.DateTime),
		AwayTeam:  teamName(r.GameData.Teams.Away),
		HomeTeam:  teamName(r.GameData.Teams.Home),
		Inning: games.Inning{
			State:   r.LiveData.Linescore.InningState,
			Ordinal: r.LiveData.Linescore.CurrentInningOrdinal,
		},
		Plays:      plays,
		Advisories: advisories,
	}
}

// appendAdvisories adds the named non-pitch events of one at-bat, numbering
// them after those already collected.
func appendAdvisories(out []games.Advisory, p playResponse) []games.Advisory {
	for _, ev := range p.PlayEvents {
		d := ev.Details
		if ev.IsPitch || d.Event == "" || d.EventType == "" {
			continue
		}
		out = append(out, games.Advisory{
			Index:         len(out),
			AtBatIndex:    p.About.AtBatIndex,
			Event:         d.Event,
			EventType:     d.EventType,
			Description:   strings.TrimSpace(d.Description),
			IsScoringPlay: d.IsScoringPlay,
			AwayScore:     d.AwayScore,
			HomeScore:     d.HomeScore,
		})
	}
	return out
}

func mapStatus(s statusResponse) games.Status {
	return games.Status{
		Abstract: s.AbstractGameState,
		Detailed: s.DetailedState,
		Final:    strings.EqualFold(s.AbstractGameState, "Final"),
	}
}

func mapPlay(p playResponse) games.Play {
	inPlay := false
	for _, ev := range p.PlayEvents {
		if ev.Details.IsInPlay {
			inPlay = true
			break
		}
	}
	return games.Play{
		Index:         p.About.AtBatIndex,
		IsComplete:    p.About.IsComplete,
		IsScoringPlay: p.About.IsScoringPlay,
		EventType:     p.Result.EventType,
		Description:   strings.TrimSpace(p.Result.Description),
		AwayScore:     p.Result.AwayScore,
		HomeScore:     p.Result.HomeScore,
		Outs:          p.Count.Outs,
		BallInPlay:    inPlay,
	}
}

func teamName(t teamResponse) string {
	if t.ClubName != "" {
		return t.ClubName
	}
	if t.TeamName != "" {
		return t.TeamName
	}
	return t.Name
}

// parseStart returns the zero time when the feed omits or garbles the start.
func parseStart(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
