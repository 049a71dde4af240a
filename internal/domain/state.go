package domain

// State represents the lifecycle stage of a darts match.
type State string

const (
	// StateJoinable is the pre-game state where a second player can join.
	StateJoinable State = "joinable"
	// StateInProgress is the active state where rounds are scored.
	StateInProgress State = "in_progress"
	// StateEnded is the state after a player checks out.
	StateEnded State = "ended"
)

// ParseState converts a list filter into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateJoinable, StateInProgress, StateEnded:
		return State(s), nil
	default:
		return "", ErrInvalidStateFilter
	}
}

// StartingScore is the match type. Its value is also the score each player
// starts from.
type StartingScore int

const (
	Score101 StartingScore = 101
	Score301 StartingScore = 301
	Score501 StartingScore = 501
)

// Valid reports whether s is one of the supported match types.
func (s StartingScore) Valid() bool {
	switch s {
	case Score101, Score301, Score501:
		return true
	default:
		return false
	}
}

// Throw is a single dart: the board segment hit and its ring multiplier.
type Throw struct {
	Segment    int `json:"segment"`    // 0 (miss), 1..20, 25 (bull)
	Multiplier int `json:"multiplier"` // 1 single, 2 double, 3 treble
}

// Score returns the points the dart is worth.
func (t Throw) Score() int {
	return t.Segment * t.Multiplier
}

// IsDouble reports whether the dart landed in a double ring.
func (t Throw) IsDouble() bool {
	return t.Multiplier == 2
}
