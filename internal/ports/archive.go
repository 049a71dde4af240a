package ports

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyArchived is returned by SaveFinishedMatch when the match id is
// already stored.
var ErrAlreadyArchived = errors.New("match already archived")

// PlayerResult holds one player's final statistics for a finished match.
type PlayerResult struct {
	PlayerID         string  `json:"player_id"`
	Throws           int     `json:"throws"`
	TotalScore       int     `json:"total_score"`
	AverageScore     float64 `json:"average_score"`
	DoublesHit       int     `json:"doubles_hit"`
	DoublesAttempted int     `json:"doubles_attempted"`
	HighestRound     int     `json:"highest_round"`
}

// FinishedMatch is the durable record of a completed match.
type FinishedMatch struct {
	MatchID       string         `json:"match_id"`
	StartingScore int            `json:"starting_score"`
	WinnerID      string         `json:"winner_id"`
	EndedAt       time.Time      `json:"ended_at"`
	Players       []PlayerResult `json:"players"`
}

// MatchArchive stores finished matches.
type MatchArchive interface {
	// SaveFinishedMatch durably stores a completed match.
	SaveFinishedMatch(ctx context.Context, match FinishedMatch) error

	// ListFinishedMatches returns up to limit archived matches, newest first.
	ListFinishedMatches(ctx context.Context, limit int) ([]FinishedMatch, error)
}
