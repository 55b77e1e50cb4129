package testutil

import (
	"strconv"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// Play builds a complete play with the given index and event type.
func Play(index int, eventType string) games.Play {
	return games.Play{
		Index:       index,
		IsComplete:  true,
		EventType:   eventType,
		Description: eventType + " #" + strconv.Itoa(index),
	}
}

// ScoringPlay builds a complete scoring play carrying the score after it.
func ScoringPlay(index int, eventType string, away, home int) games.Play {
	p := Play(index, eventType)
	p.IsScoringPlay = true
	p.AwayScore = away
	p.HomeScore = home
	return p
}

// LiveFeed builds an in-progress feed for gameID with the given plays.
func LiveFeed(gameID string, plays ...games.Play) games.Feed {
	return games.Feed{
		GameID:    gameID,
		Status:    games.Status{Abstract: "Live", Detailed: "In Progress"},
		StartTime: time.Now().Add(-time.Hour).UTC(),
		AwayTeam:  "Mets",
		HomeTeam:  "Braves",
		Plays:     plays,
	}
}

// FinalFeed builds a finished feed for gameID with the given plays.
func FinalFeed(gameID string, plays ...games.Play) games.Feed {
	f := LiveFeed(gameID, plays...)
	f.Status = games.Status{Abstract: "Final", Detailed: "Final", Final: true}
	return f
}

// PreviewFeed builds a scheduled feed starting at start.
func PreviewFeed(gameID string, start time.Time) games.Feed {
	f := LiveFeed(gameID)
	f.Status = games.Status{Abstract: "Preview", Detailed: "Scheduled"}
	f.StartTime = start
	return f
}
