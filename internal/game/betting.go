package game

import "fmt"

// Street is the phase of the current hand.
type Street int

const (
	Waiting Street = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}[s]
}

// betting reports whether seats act during this street.
func (s Street) betting() bool {
	return s >= Preflop && s <= River
}

func (s Street) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Action is a betting action submitted by a seat.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// ParseAction converts a wire-format action name.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "allin", "all_in", "all-in":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}
