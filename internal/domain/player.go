package domain

// PlayerSession holds one player's scoring state within a match. Fields are
// only changed by the owning Match.
type PlayerSession struct {
	id               string
	scoreLeft        int
	throws           int
	totalScore       int
	highestRound     int
	doublesAttempted int
	doublesHit       int
}

// PlayerStats is a read-only snapshot of a PlayerSession.
type PlayerStats struct {
	PlayerID         string `json:"player_id"`
	ScoreLeft        int    `json:"score_left"`
	Throws           int    `json:"throws"`
	TotalScore       int    `json:"total_score"`
	HighestRound     int    `json:"highest_round"`
	DoublesAttempted int    `json:"doubles_attempted"`
	DoublesHit       int    `json:"doubles_hit"`
}

func newPlayerSession(playerID string) *PlayerSession {
	return &PlayerSession{id: playerID}
}

// ID returns the player's identifier.
func (p *PlayerSession) ID() string { return p.id }

// ScoreLeft returns the points still needed to check out.
func (p *PlayerSession) ScoreLeft() int { return p.scoreLeft }

// Stats returns a snapshot of the session.
func (p *PlayerSession) Stats() PlayerStats {
	return PlayerStats{
		PlayerID:         p.id,
		ScoreLeft:        p.scoreLeft,
		Throws:           p.throws,
		TotalScore:       p.totalScore,
		HighestRound:     p.highestRound,
		DoublesAttempted: p.doublesAttempted,
		DoublesHit:       p.doublesHit,
	}
}

// Average returns points scored per dart, or 0 before the first dart.
func (s PlayerStats) Average() float64 {
	if s.Throws == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.Throws)
}
