package domain

import (
	"errors"
	"testing"
	"time"
)

func newStartedMatch(t *testing.T, score StartingScore) *Match {
	t.Helper()
	m, err := NewMatch("m1", "u1", score)
	if err != nil {
		t.Fatalf("new match error: %v", err)
	}
	if err := m.Join("u2"); err != nil {
		t.Fatalf("join error: %v", err)
	}
	if err := m.Start("u1"); err != nil {
		t.Fatalf("start error: %v", err)
	}
	return m
}

// setScore puts the current thrower on a given remainder for checkout scenarios.
func setScore(m *Match, scoreLeft int) {
	m.turn.scoreLeft = scoreLeft
}

func TestNewMatchIsJoinable(t *testing.T) {
	m, err := NewMatch("m1", "u1", Score501)
	if err != nil {
		t.Fatalf("new match error: %v", err)
	}
	if m.State() != StateJoinable {
		t.Fatalf("state = %s, want joinable", m.State())
	}
	if m.Turn() != "u1" {
		t.Fatalf("turn = %s, want u1", m.Turn())
	}
	if m.Player1().ScoreLeft() != 0 {
		t.Fatalf("score left before start = %d, want 0", m.Player1().ScoreLeft())
	}
	if _, ok := m.Player2(); ok {
		t.Fatalf("player2 should be absent before join")
	}
}

func TestNewMatchRejectsUnknownScore(t *testing.T) {
	if _, err := NewMatch("m1", "u1", StartingScore(401)); !errors.Is(err, ErrInvalidStartScore) {
		t.Fatalf("err = %v, want ErrInvalidStartScore", err)
	}
}

func TestStartSetsStartingScore(t *testing.T) {
	for _, score := range []StartingScore{Score101, Score301, Score501} {
		m := newStartedMatch(t, score)
		p2, _ := m.Player2()
		if m.Player1().ScoreLeft() != int(score) || p2.ScoreLeft() != int(score) {
			t.Fatalf("score %d: got %d/%d", score, m.Player1().ScoreLeft(), p2.ScoreLeft())
		}
		if m.State() != StateInProgress {
			t.Fatalf("state = %s, want in_progress", m.State())
		}
		if m.Turn() != "u1" {
			t.Fatalf("turn = %s, want u1", m.Turn())
		}
	}
}

func TestJoinConflicts(t *testing.T) {
	m, _ := NewMatch("m1", "u1", Score301)

	if err := m.Join("u1"); !errors.Is(err, ErrSelfJoin) {
		t.Fatalf("self join err = %v, want ErrSelfJoin", err)
	}
	if err := m.Join("u2"); err != nil {
		t.Fatalf("join error: %v", err)
	}
	if m.State() != StateJoinable {
		t.Fatalf("join should not change state, got %s", m.State())
	}
	err := m.Join("u3")
	if !errors.Is(err, ErrMatchFull) {
		t.Fatalf("full join err = %v, want ErrMatchFull", err)
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %s, want conflict", KindOf(err))
	}
}

func TestStartRules(t *testing.T) {
	m, _ := NewMatch("m1", "u1", Score301)

	if err := m.Start("u1"); !errors.Is(err, ErrMissingOpponent) {
		t.Fatalf("start without opponent err = %v, want ErrMissingOpponent", err)
	}
	_ = m.Join("u2")
	err := m.Start("u2")
	if !errors.Is(err, ErrNotCreator) || KindOf(err) != KindPermissionDenied {
		t.Fatalf("start by non-creator err = %v, want permission denied", err)
	}
	if err := m.Start("u1"); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if err := m.Start("u1"); KindOf(err) != KindInvalidState {
		t.Fatalf("second start err = %v, want invalid state", err)
	}
}

func TestEditTypeAndDeleteOnlyWhileJoinable(t *testing.T) {
	m, _ := NewMatch("m1", "u1", Score501)

	if err := m.EditType("u2", Score101); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("edit by non-creator err = %v", err)
	}
	if err := m.EditType("u1", StartingScore(0)); !errors.Is(err, ErrInvalidStartScore) {
		t.Fatalf("edit to bad score err = %v", err)
	}
	if err := m.EditType("u1", Score101); err != nil {
		t.Fatalf("edit error: %v", err)
	}
	if m.StartingScore() != Score101 {
		t.Fatalf("starting score = %d, want 101", m.StartingScore())
	}
	if err := m.AuthorizeDelete("u1"); err != nil {
		t.Fatalf("delete while joinable error: %v", err)
	}

	_ = m.Join("u2")
	_ = m.Start("u1")
	if err := m.EditType("u1", Score301); KindOf(err) != KindInvalidState {
		t.Fatalf("edit in progress err = %v, want invalid state", err)
	}
	if err := m.AuthorizeDelete("u1"); KindOf(err) != KindInvalidState {
		t.Fatalf("delete in progress err = %v, want invalid state", err)
	}
}

func TestRecordRoundRequiresTurn(t *testing.T) {
	m := newStartedMatch(t, Score501)

	if _, err := m.RecordRound("u2", []Throw{{Segment: 20, Multiplier: 1}}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if _, err := m.RecordRound("u9", []Throw{{Segment: 20, Multiplier: 1}}); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}

	joinable, _ := NewMatch("m2", "u1", Score501)
	if _, err := joinable.RecordRound("u1", nil); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("err = %v, want ErrNotInProgress", err)
	}
}

func TestRecordRoundScoresAndAlternates(t *testing.T) {
	m := newStartedMatch(t, Score501)

	res, err := m.RecordRound("u1", []Throw{{20, 3}, {20, 3}, {20, 1}})
	if err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if res.Points != 140 || res.ScoreLeft != 361 || res.ThrowsConsumed != 3 || res.Bust {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.NextTurn != "u2" || m.Turn() != "u2" {
		t.Fatalf("turn = %s, want u2", m.Turn())
	}

	stats := m.Player1().Stats()
	if stats.Throws != 3 || stats.TotalScore != 140 || stats.HighestRound != 140 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if _, err := m.RecordRound("u2", []Throw{{5, 1}, {1, 1}, {0, 1}}); err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if m.Turn() != "u1" {
		t.Fatalf("turn = %s, want u1", m.Turn())
	}
}

func TestTurnAlternatesOnBustAndFinish(t *testing.T) {
	m := newStartedMatch(t, Score101)

	setScore(m, 2)
	if _, err := m.RecordRound("u1", []Throw{{2, 1}}); err != nil {
		t.Fatalf("bust round error: %v", err)
	}
	if m.Turn() != "u2" {
		t.Fatalf("turn after bust = %s, want u2", m.Turn())
	}

	setScore(m, 40)
	if _, err := m.RecordRound("u2", []Throw{{20, 2}}); err != nil {
		t.Fatalf("finish round error: %v", err)
	}
	if m.Turn() != "u1" {
		t.Fatalf("turn after finish = %s, want u1", m.Turn())
	}
}

func TestCheckoutOnDoubleEndsMatch(t *testing.T) {
	m := newStartedMatch(t, Score101)
	setScore(m, 40)

	res, err := m.RecordRound("u1", []Throw{{20, 2}, {20, 3}, {20, 3}})
	if err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if !res.Finished || res.Bust || res.ScoreLeft != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if m.State() != StateEnded {
		t.Fatalf("state = %s, want ended", m.State())
	}
	stats := m.Player1().Stats()
	if stats.DoublesHit != 1 || stats.DoublesAttempted != 1 {
		t.Fatalf("doubles = %d/%d, want 1/1", stats.DoublesHit, stats.DoublesAttempted)
	}
	if stats.Throws != 3 {
		t.Fatalf("throws = %d, want 3", stats.Throws)
	}
	if winner, ok := m.Winner(); !ok || winner != "u1" {
		t.Fatalf("winner = %q, %v", winner, ok)
	}
	if _, err := m.RecordRound("u2", []Throw{{20, 1}}); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("round after end err = %v, want ErrNotInProgress", err)
	}
}

func TestCheckoutOnSingleIsBust(t *testing.T) {
	m := newStartedMatch(t, Score101)
	setScore(m, 2)

	res, err := m.RecordRound("u1", []Throw{{2, 1}, {20, 1}, {20, 1}})
	if err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if !res.Bust || res.Finished {
		t.Fatalf("expected bust, got %+v", res)
	}
	if m.State() != StateInProgress {
		t.Fatalf("state = %s, want in_progress", m.State())
	}
	stats := m.Player1().Stats()
	if stats.ScoreLeft != 2 {
		t.Fatalf("score left = %d, want 2", stats.ScoreLeft)
	}
	if stats.Throws != 3 {
		t.Fatalf("throws = %d, want 3", stats.Throws)
	}
	if stats.DoublesAttempted != 1 || stats.DoublesHit != 0 {
		t.Fatalf("doubles = %d/%d, want 0/1", stats.DoublesHit, stats.DoublesAttempted)
	}
	if stats.TotalScore != 0 || stats.HighestRound != 0 {
		t.Fatalf("bust should not score: %+v", stats)
	}
}

func TestBustRevertsWholeRound(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		throws    []Throw
		wantLeft  int
		wantDbl   int
		wantThrow int
	}{
		{
			name:      "overshoot on third dart",
			start:     60,
			throws:    []Throw{{20, 1}, {19, 1}, {20, 3}},
			wantLeft:  60,
			wantDbl:   1,
			wantThrow: 3,
		},
		{
			name:      "leaves one",
			start:     41,
			throws:    []Throw{{20, 2}},
			wantLeft:  41,
			wantDbl:   0,
			wantThrow: 3,
		},
		{
			name:      "overshoot from checkout range",
			start:     32,
			throws:    []Throw{{20, 2}},
			wantLeft:  32,
			wantDbl:   1,
			wantThrow: 3,
		},
	}

	// 60 -> 40 (pre 60: not reachable) -> 21 (pre 40: reachable) -> bust (pre 21: odd).
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStartedMatch(t, Score501)
			setScore(m, tt.start)

			res, err := m.RecordRound("u1", tt.throws)
			if err != nil {
				t.Fatalf("record round error: %v", err)
			}
			if !res.Bust || res.Points != 0 {
				t.Fatalf("expected bust with no points, got %+v", res)
			}
			stats := m.Player1().Stats()
			if stats.ScoreLeft != tt.wantLeft {
				t.Fatalf("score left = %d, want %d", stats.ScoreLeft, tt.wantLeft)
			}
			if stats.DoublesAttempted != tt.wantDbl {
				t.Fatalf("doubles attempted = %d, want %d", stats.DoublesAttempted, tt.wantDbl)
			}
			if stats.Throws != tt.wantThrow {
				t.Fatalf("throws = %d, want %d", stats.Throws, tt.wantThrow)
			}
		})
	}
}

func TestDoublesExposureCountsEveryEligibleDart(t *testing.T) {
	m := newStartedMatch(t, Score501)
	setScore(m, 50)

	// 50 (bull reachable) -> 40 (reachable) -> 38 (reachable) -> 36.
	res, err := m.RecordRound("u1", []Throw{{10, 1}, {2, 1}, {2, 1}})
	if err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if res.Bust || res.Finished || res.ScoreLeft != 36 {
		t.Fatalf("unexpected result: %+v", res)
	}
	stats := m.Player1().Stats()
	if stats.DoublesAttempted != 3 || stats.DoublesHit != 0 {
		t.Fatalf("doubles = %d/%d, want 0/3", stats.DoublesHit, stats.DoublesAttempted)
	}
}

func TestHighestRoundKeepsMaximum(t *testing.T) {
	m := newStartedMatch(t, Score501)

	_, _ = m.RecordRound("u1", []Throw{{20, 3}, {20, 3}, {20, 3}})
	_, _ = m.RecordRound("u2", []Throw{{1, 1}, {1, 1}, {1, 1}})
	_, _ = m.RecordRound("u1", []Throw{{1, 1}, {1, 1}, {1, 1}})

	stats := m.Player1().Stats()
	if stats.HighestRound != 180 {
		t.Fatalf("highest round = %d, want 180", stats.HighestRound)
	}
	if stats.TotalScore != 183 || stats.Throws != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := stats.Average(); got != 30.5 {
		t.Fatalf("average = %v, want 30.5", got)
	}
}

func TestShortRoundCountsDartsThrown(t *testing.T) {
	m := newStartedMatch(t, Score501)

	res, err := m.RecordRound("u1", []Throw{{20, 1}, {20, 1}})
	if err != nil {
		t.Fatalf("record round error: %v", err)
	}
	if res.ThrowsConsumed != 2 || m.Player1().Stats().Throws != 2 {
		t.Fatalf("throws consumed = %d, want 2", res.ThrowsConsumed)
	}
}

func TestViewHidesMissingOpponent(t *testing.T) {
	m, _ := NewMatch("m1", "u1", Score301)
	v := m.View()
	if v.Player2 != nil {
		t.Fatalf("player2 should be nil before join")
	}
	_ = m.Join("u2")
	v = m.View()
	if v.Player2 == nil || v.Player2.PlayerID != "u2" {
		t.Fatalf("unexpected player2: %+v", v.Player2)
	}
	if opp, ok := m.Opponent("u2"); !ok || opp != "u1" {
		t.Fatalf("opponent = %q, %v", opp, ok)
	}
}

func TestCheckoutStampsEndTimeOnce(t *testing.T) {
	m := newStartedMatch(t, Score101)
	now := time.Date(2026, time.October, 18, 21, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	m.SetClock(func() time.Time { return now })

	if _, ok := m.EndedAt(); ok {
		t.Fatal("live match should not report an end time")
	}
	if m.View().EndedAt != nil {
		t.Fatal("live view should omit ended_at")
	}

	setScore(m, 40)
	if _, err := m.RecordRound("u1", []Throw{{20, 2}}); err != nil {
		t.Fatalf("record round error: %v", err)
	}
	now = now.Add(time.Hour)

	endedAt, ok := m.EndedAt()
	if !ok || !endedAt.Equal(time.Date(2026, time.October, 18, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("ended at = %v, %v", endedAt, ok)
	}
	if endedAt.Location() != time.UTC {
		t.Fatalf("ended at location = %v, want UTC", endedAt.Location())
	}
	if v := m.View(); v.EndedAt == nil || !v.EndedAt.Equal(endedAt) {
		t.Fatalf("view ended at = %v", v.EndedAt)
	}
}
