package games

// Classification drives which broadcast delay a play is held for.
type Classification int

const (
	// ClassOther covers advisory-style events: substitutions, steals, wild pitches.
	ClassOther Classification = iota
	// ClassInPlay covers plays where the ball was put in play.
	ClassInPlay
	// ClassStrikeoutOrWalk covers plate appearances decided without a ball in play.
	ClassStrikeoutOrWalk
)

func (c Classification) String() string {
	switch c {
	case ClassInPlay:
		return "IN_PLAY"
	case ClassStrikeoutOrWalk:
		return "STRIKEOUT_OR_WALK"
	default:
		return "OTHER"
	}
}

var strikeoutOrWalkEvents = map[string]struct{}{
	"strikeout":             {},
	"strikeout_double_play": {},
	"strikeout_triple_play": {},
	"walk":                  {},
	"intent_walk":           {},
	"hit_by_pitch":          {},
}

var inPlayEvents = map[string]struct{}{
	"single":                    {},
	"double":                    {},
	"triple":                    {},
	"home_run":                  {},
	"field_out":                 {},
	"force_out":                 {},
	"grounded_into_double_play": {},
	"grounded_into_triple_play": {},
	"double_play":               {},
	"triple_play":               {},
	"fielders_choice":           {},
	"fielders_choice_out":       {},
	"field_error":               {},
	"sac_fly":                   {},
	"sac_bunt":                  {},
	"sac_fly_double_play":       {},
	"sac_bunt_double_play":      {},
}

// Classify maps a play's terminal event type to a Classification.
// The event type wins over the BallInPlay hint so a dropped third strike stays a strikeout.
func Classify(p Play) Classification {
	if _, ok := strikeoutOrWalkEvents[p.EventType]; ok {
		return ClassStrikeoutOrWalk
	}
	if _, ok := inPlayEvents[p.EventType]; ok {
		return ClassInPlay
	}
	if p.BallInPlay {
		return ClassInPlay
	}
	return ClassOther
}
