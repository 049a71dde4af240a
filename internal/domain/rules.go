package domain

const (
	// MaxThrowsPerRound is the number of darts a player throws before the turn passes.
	MaxThrowsPerRound = 3

	bullSegment       = 25
	maxNumberSegment  = 20
	maxMultiplier     = 3
	maxBullMultiplier = 2
	maxDoubleCheckout = 40
	bullCheckout      = 50
)

// ValidateThrows checks the shape of a round payload before it reaches a match.
func ValidateThrows(throws []Throw) error {
	if len(throws) == 0 || len(throws) > MaxThrowsPerRound {
		return ErrInvalidThrowCount
	}
	for _, t := range throws {
		if err := validateThrow(t); err != nil {
			return err
		}
	}
	return nil
}

func validateThrow(t Throw) error {
	if t.Segment == bullSegment {
		if t.Multiplier < 1 || t.Multiplier > maxBullMultiplier {
			return ErrInvalidBullMult
		}
		return nil
	}
	if t.Segment < 0 || t.Segment > maxNumberSegment {
		return ErrInvalidSegment
	}
	if t.Multiplier < 1 || t.Multiplier > maxMultiplier {
		return ErrInvalidMultiplier
	}
	return nil
}

// checkoutReachable reports whether a single double can finish from score:
// any even score up to double 20, or the bullseye.
func checkoutReachable(score int) bool {
	if score%2 != 0 {
		return false
	}
	return score <= maxDoubleCheckout || score == bullCheckout
}

// isBustScore reports whether a non-zero remainder can no longer be finished
// on a double.
func isBustScore(scoreLeft int) bool {
	return scoreLeft != 0 && scoreLeft <= 1
}
