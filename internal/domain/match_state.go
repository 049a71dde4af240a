package domain

import "time"

// Match is the live state machine for one darts match between two players.
// It is not safe for concurrent use; the registry serializes access.
type Match struct {
	id            string
	startingScore StartingScore
	state         State

	player1 *PlayerSession
	player2 *PlayerSession // nil until someone joins; read through Player2
	turn    *PlayerSession

	clock   func() time.Time
	endedAt time.Time // set once by the checkout round
}

// MatchView is a serializable snapshot of a Match.
type MatchView struct {
	ID            string        `json:"match_id"`
	StartingScore StartingScore `json:"starting_score"`
	State         State         `json:"state"`
	Player1       PlayerStats   `json:"player1"`
	Player2       *PlayerStats  `json:"player2,omitempty"`
	Turn          string        `json:"turn"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
}

// RoundResult describes what a recorded round did to the thrower's session.
type RoundResult struct {
	PlayerID       string `json:"player_id"`
	Points         int    `json:"points"`
	ThrowsConsumed int    `json:"throws_consumed"`
	Bust           bool   `json:"bust"`
	Finished       bool   `json:"finished"`
	ScoreLeft      int    `json:"score_left"`
	NextTurn       string `json:"next_turn"`
}

// NewMatch creates a joinable match owned by creatorID.
func NewMatch(id, creatorID string, score StartingScore) (*Match, error) {
	if !score.Valid() {
		return nil, ErrInvalidStartScore
	}
	creator := newPlayerSession(creatorID)
	return &Match{
		id:            id,
		startingScore: score,
		state:         StateJoinable,
		player1:       creator,
		turn:          creator,
		clock:         time.Now,
	}, nil
}

func (m *Match) ID() string                   { return m.id }
func (m *Match) State() State                 { return m.state }
func (m *Match) StartingScore() StartingScore { return m.startingScore }
func (m *Match) Player1() *PlayerSession      { return m.player1 }

// Player2 returns the second player and whether one has joined.
func (m *Match) Player2() (*PlayerSession, bool) {
	return m.player2, m.player2 != nil
}

// SetClock replaces the time source used to stamp the end of the match.
func (m *Match) SetClock(now func() time.Time) {
	if now != nil {
		m.clock = now
	}
}

// EndedAt returns when the checkout round was recorded.
func (m *Match) EndedAt() (time.Time, bool) {
	return m.endedAt, m.state == StateEnded
}

// Turn returns the id of the player expected to throw next.
func (m *Match) Turn() string { return m.turn.id }

// IsCreator reports whether playerID created the match.
func (m *Match) IsCreator(playerID string) bool {
	return m.player1.id == playerID
}

// HasPlayer reports whether playerID is one of the match participants.
func (m *Match) HasPlayer(playerID string) bool {
	if m.player1.id == playerID {
		return true
	}
	p2, ok := m.Player2()
	return ok && p2.id == playerID
}

// Opponent returns the id of the other participant, if there is one.
func (m *Match) Opponent(playerID string) (string, bool) {
	p2, ok := m.Player2()
	if !ok {
		return "", false
	}
	switch playerID {
	case m.player1.id:
		return p2.id, true
	case p2.id:
		return m.player1.id, true
	default:
		return "", false
	}
}

// Winner returns the player who checked out once the match has ended.
func (m *Match) Winner() (string, bool) {
	if m.state != StateEnded {
		return "", false
	}
	if m.player1.scoreLeft == 0 {
		return m.player1.id, true
	}
	if p2, ok := m.Player2(); ok && p2.scoreLeft == 0 {
		return p2.id, true
	}
	return "", false
}

// Join seats playerID as the second player.
func (m *Match) Join(playerID string) error {
	if m.IsCreator(playerID) {
		return ErrSelfJoin
	}
	if _, ok := m.Player2(); ok {
		return ErrMatchFull
	}
	if m.state != StateJoinable {
		return ErrNotJoinable
	}
	m.player2 = newPlayerSession(playerID)
	return nil
}

// Start moves the match into play. Only the creator may start it and only
// once an opponent has joined.
func (m *Match) Start(requesterID string) error {
	if !m.IsCreator(requesterID) {
		return ErrNotCreator
	}
	if m.state != StateJoinable {
		return ErrNotJoinable
	}
	p2, ok := m.Player2()
	if !ok {
		return ErrMissingOpponent
	}

	m.player1.scoreLeft = int(m.startingScore)
	p2.scoreLeft = int(m.startingScore)
	m.state = StateInProgress
	m.turn = m.player1
	return nil
}

// EditType changes the starting score while the match is still joinable.
func (m *Match) EditType(requesterID string, score StartingScore) error {
	if !m.IsCreator(requesterID) {
		return ErrNotCreator
	}
	if m.state != StateJoinable {
		return ErrNotJoinable
	}
	if !score.Valid() {
		return ErrInvalidStartScore
	}
	m.startingScore = score
	return nil
}

// AuthorizeDelete checks that requesterID may discard the match.
func (m *Match) AuthorizeDelete(requesterID string) error {
	if !m.IsCreator(requesterID) {
		return ErrNotCreator
	}
	if m.state != StateJoinable {
		return ErrNotJoinable
	}
	return nil
}

// RecordRound scores up to three darts for the player whose turn it is and
// passes the turn to the other player.
func (m *Match) RecordRound(playerID string, throws []Throw) (RoundResult, error) {
	if m.state != StateInProgress {
		return RoundResult{}, ErrNotInProgress
	}
	if m.turn.id != playerID {
		if !m.HasPlayer(playerID) {
			return RoundResult{}, ErrNotParticipant
		}
		return RoundResult{}, ErrNotYourTurn
	}
	if len(throws) > MaxThrowsPerRound {
		return RoundResult{}, ErrInvalidThrowCount
	}

	p := m.turn
	result := scoreRound(p, throws)
	if p.scoreLeft == 0 {
		m.state = StateEnded
		m.endedAt = m.clock().UTC()
	}
	m.turn = m.other(p)

	result.NextTurn = m.turn.id
	return result, nil
}

func (m *Match) other(p *PlayerSession) *PlayerSession {
	if p == m.player1 {
		return m.player2
	}
	return m.player1
}

// scoreRound applies a round to p. A bust restores the score held before the
// round, and a bust or checkout uses up all three darts.
func scoreRound(p *PlayerSession, throws []Throw) RoundResult {
	original := p.scoreLeft
	consumed := 0
	bust, finished := false, false

	for _, t := range throws {
		consumed++
		before := p.scoreLeft
		p.scoreLeft -= t.Score()

		if p.scoreLeft == 0 {
			p.doublesAttempted++
			if t.IsDouble() {
				p.doublesHit++
				finished = true
			} else {
				bust = true
			}
			break
		}
		if checkoutReachable(before) {
			p.doublesAttempted++
		}
		if isBustScore(p.scoreLeft) {
			bust = true
			break
		}
	}

	if bust {
		p.scoreLeft = original
	}
	if bust || finished {
		consumed = MaxThrowsPerRound
	}

	points := original - p.scoreLeft
	if points > p.highestRound {
		p.highestRound = points
	}
	p.throws += consumed
	p.totalScore += points

	return RoundResult{
		PlayerID:       p.id,
		Points:         points,
		ThrowsConsumed: consumed,
		Bust:           bust,
		Finished:       finished,
		ScoreLeft:      p.scoreLeft,
	}
}

// View returns a snapshot of the match.
func (m *Match) View() MatchView {
	v := MatchView{
		ID:            m.id,
		StartingScore: m.startingScore,
		State:         m.state,
		Player1:       m.player1.Stats(),
		Turn:          m.turn.id,
	}
	if p2, ok := m.Player2(); ok {
		stats := p2.Stats()
		v.Player2 = &stats
	}
	if endedAt, ok := m.EndedAt(); ok {
		v.EndedAt = &endedAt
	}
	return v
}
