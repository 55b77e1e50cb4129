package games

import (
	"errors"
	"strings"
	"time"
)

const defaultLocale = "en"

// ActiveGame binds one upstream game to the channel that receives its updates.
// Values are immutable; a channel holds at most one ActiveGame at a time.
type ActiveGame struct {
	GameID    string `json:"gameId"`
	ChannelID string `json:"channelId"`
	Locale    string `json:"locale"`
}

// NewActiveGame builds an ActiveGame, defaulting the locale to "en".
func NewActiveGame(gameID, channelID, locale string) ActiveGame {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = defaultLocale
	}
	return ActiveGame{
		GameID:    strings.TrimSpace(gameID),
		ChannelID: strings.TrimSpace(channelID),
		Locale:    locale,
	}
}

// Validate reports whether the identifiers needed to track the game are present.
func (g ActiveGame) Validate() error {
	if g.GameID == "" {
		return errors.New("game id is required")
	}
	if g.ChannelID == "" {
		return errors.New("channel id is required")
	}
	return nil
}

// Status is the upstream lifecycle state of a game.
type Status struct {
	Abstract string `json:"abstractGameState"`
	Detailed string `json:"detailedState"`
	Final    bool   `json:"final"`
}

// Cancelled reports a game that will not be played.
func (s Status) Cancelled() bool {
	return s.Detailed == "Cancelled"
}

// Suspended reports a game halted with no known resume time.
func (s Status) Suspended() bool {
	return strings.Contains(s.Detailed, "Suspended")
}

// Finished reports whether no further plays will arrive for this game.
func (s Status) Finished() bool {
	return s.Final || s.Abstract == "Final" || s.Cancelled() || s.Suspended()
}

// Play is one plate appearance or event as reported by the feed.
// Trailing plays may be incomplete while the at-bat is still in progress.
type Play struct {
	Index         int    `json:"index"`
	IsComplete    bool   `json:"isComplete"`
	IsScoringPlay bool   `json:"isScoringPlay"`
	EventType     string `json:"eventType"`
	Description   string `json:"description"`
	AwayScore     int    `json:"awayScore"`
	HomeScore     int    `json:"homeScore"`
	Outs          int    `json:"outs"`
	BallInPlay    bool   `json:"ballInPlay,omitempty"`
}

// Advisory is a non-pitch game event such as a pitching change, mound visit
// or defensive switch. Index counts advisories from the start of the game, so
// it only grows as the feed does.
type Advisory struct {
	Index         int    `json:"index"`
	AtBatIndex    int    `json:"atBatIndex"`
	Event         string `json:"event"`
	EventType     string `json:"eventType"`
	Description   string `json:"description"`
	IsScoringPlay bool   `json:"isScoringPlay,omitempty"`
	AwayScore     int    `json:"awayScore,omitempty"`
	HomeScore     int    `json:"homeScore,omitempty"`
}

// Inning is the half-inning the feed currently reports.
type Inning struct {
	State   string `json:"state"`
	Ordinal string `json:"ordinal"`
}

// Changeover reports the Middle and End states between half-innings.
func (i Inning) Changeover() bool {
	return i.State == "Middle" || i.State == "End"
}

// Feed is a point-in-time snapshot of a game's live data.
type Feed struct {
	GameID     string     `json:"gameId"`
	Status     Status     `json:"status"`
	StartTime  time.Time  `json:"startTime"`
	AwayTeam   string     `json:"awayTeam"`
	HomeTeam   string     `json:"homeTeam"`
	Inning     Inning     `json:"inning"`
	Plays      []Play     `json:"plays"`
	Advisories []Advisory `json:"advisories,omitempty"`
}

// Score returns the latest away/home score known from the plays in the feed.
func (f Feed) Score() (away, home int) {
	for i := len(f.Plays) - 1; i >= 0; i-- {
		p := f.Plays[i]
		if p.IsComplete {
			return p.AwayScore, p.HomeScore
		}
	}
	return 0, 0
}

// LastCompleteIndex returns the highest index of a complete play, or -1.
func (f Feed) LastCompleteIndex() int {
	last := -1
	for _, p := range f.Plays {
		if p.IsComplete && p.Index > last {
			last = p.Index
		}
	}
	return last
}

// PlayEvent is a classified, rendered play ready for announcement.
type PlayEvent struct {
	Index          int
	IsComplete     bool
	IsScoringPlay  bool
	Classification Classification
	RenderedText   string
}
