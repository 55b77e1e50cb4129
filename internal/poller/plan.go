package poller

import (
	"sort"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

type plannedEvent struct {
	event games.PlayEvent
	delay time.Duration
}

// planPlays walks the complete plays after cursor in index order and returns
// the ones to announce along with the advanced cursor. Filtered plays still
// move the cursor so they are never evaluated again.
func planPlays(feed games.Feed, cursor int, cfg channels.Config) ([]plannedEvent, int) {
	plays := make([]games.Play, 0, len(feed.Plays))
	for _, play := range feed.Plays {
		if play.IsComplete && play.Index > cursor {
			plays = append(plays, play)
		}
	}
	sort.Slice(plays, func(i, j int) bool { return plays[i].Index < plays[j].Index })

	var out []plannedEvent
	for _, play := range plays {
		cursor = play.Index

		if cfg.OnlyScoringPlays && !play.IsScoringPlay {
			continue
		}
		class := games.Classify(play)
		var delay time.Duration
		switch class {
		case games.ClassInPlay:
			delay = cfg.InPlayDelay()
		case games.ClassStrikeoutOrWalk:
			delay = cfg.NoPlayDelay()
		default:
			if !cfg.GameAdvisories {
				continue
			}
			delay = cfg.NoPlayDelay()
		}
		out = append(out, plannedEvent{
			event: games.PlayEvent{
				Index:          play.Index,
				IsComplete:     play.IsComplete,
				IsScoringPlay:  play.IsScoringPlay,
				Classification: class,
				RenderedText:   renderPlay(feed, play, cfg),
			},
			delay: delay,
		})
	}
	return out, cursor
}

// planAdvisories returns the advisories with Index >= next and the index to
// resume from. Channels with advisories turned off still advance.
func planAdvisories(feed games.Feed, next int, cfg channels.Config) ([]plannedEvent, int) {
	var out []plannedEvent
	for _, adv := range feed.Advisories {
		if adv.Index < next {
			continue
		}
		next = adv.Index + 1
		if !cfg.GameAdvisories {
			continue
		}
		out = append(out, plannedEvent{
			event: games.PlayEvent{
				Index:          adv.Index,
				IsComplete:     true,
				IsScoringPlay:  adv.IsScoringPlay,
				Classification: games.ClassOther,
				RenderedText:   renderAdvisory(feed, adv),
			},
			delay: cfg.NoPlayDelay(),
		})
	}
	return out, next
}
