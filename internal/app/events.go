package app

import (
	"darts/internal/domain"
	"darts/internal/ports"
)

// EventKind identifies emitted match events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined  EventKind = "player_joined"
	EventMatchStarted  EventKind = "match_started"
	EventRoundRecorded EventKind = "round_recorded"
	EventMatchEnded    EventKind = "match_ended"
	EventMatchDeleted  EventKind = "match_deleted"
)

func playerJoinedEvent(view domain.MatchView) ports.Event {
	return ports.Event{
		Kind: string(EventPlayerJoined),
		Content: map[string]interface{}{
			"match_id":  view.ID,
			"player_id": view.Player2.PlayerID,
		},
		Recipients: []string{view.Player1.PlayerID},
	}
}

func matchStartedEvent(view domain.MatchView) ports.Event {
	return ports.Event{
		Kind: string(EventMatchStarted),
		Content: map[string]interface{}{
			"match_id":       view.ID,
			"starting_score": int(view.StartingScore),
			"turn":           view.Turn,
		},
		Recipients: []string{view.Player2.PlayerID},
	}
}

func roundRecordedEvent(matchID string, res domain.RoundResult) ports.Event {
	return ports.Event{
		Kind: string(EventRoundRecorded),
		Content: map[string]interface{}{
			"match_id":   matchID,
			"player_id":  res.PlayerID,
			"points":     res.Points,
			"bust":       res.Bust,
			"score_left": res.ScoreLeft,
			"next_turn":  res.NextTurn,
		},
		Recipients: []string{res.NextTurn},
	}
}

func matchEndedEvent(rec ports.FinishedMatch) ports.Event {
	recipients := make([]string, 0, len(rec.Players))
	for _, p := range rec.Players {
		recipients = append(recipients, p.PlayerID)
	}
	return ports.Event{
		Kind: string(EventMatchEnded),
		Content: map[string]interface{}{
			"match_id":  rec.MatchID,
			"winner_id": rec.WinnerID,
		},
		Recipients: recipients,
	}
}

func matchDeletedEvent(matchID, opponentID string) ports.Event {
	return ports.Event{
		Kind:       string(EventMatchDeleted),
		Content:    map[string]interface{}{"match_id": matchID},
		Recipients: []string{opponentID},
	}
}
