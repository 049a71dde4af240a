package app

import (
	"context"
	"errors"
	"time"

	"darts/internal/domain"
	"darts/internal/ports"

	"github.com/google/uuid"
)

// DefaultListLimit caps how many archived matches a listing returns.
const DefaultListLimit = 100

// Service contains the darts match use-cases. One Service is built at module
// init and shared by every RPC for the lifetime of the process.
type Service struct {
	matches   *Registry
	users     ports.UserDirectory
	archive   ports.MatchArchive
	events    ports.EventPublisher
	listLimit int

	newID func() string
	now   func() time.Time
}

// RoundOutcome is returned to the thrower after a round is recorded.
type RoundOutcome struct {
	domain.RoundResult
	Ended bool `json:"ended"`
}

// Listing holds either live match views or archived records, depending on
// the requested state.
type Listing struct {
	State    domain.State          `json:"state"`
	Matches  []domain.MatchView    `json:"matches,omitempty"`
	Finished []ports.FinishedMatch `json:"finished,omitempty"`
}

// NewService constructs a Service over the given ports. events may be nil.
func NewService(users ports.UserDirectory, archive ports.MatchArchive, events ports.EventPublisher) *Service {
	return &Service{
		matches:   NewRegistry(),
		users:     users,
		archive:   archive,
		events:    events,
		listLimit: DefaultListLimit,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// WithListLimit overrides the archived-match listing cap.
func (s *Service) WithListLimit(limit int) *Service {
	if limit > 0 {
		s.listLimit = limit
	}
	return s
}

// Create opens a new joinable match owned by creatorID and returns its id.
func (s *Service) Create(ctx context.Context, creatorID string, score domain.StartingScore) (string, error) {
	if !score.Valid() {
		return "", domain.ErrInvalidStartScore
	}
	if err := s.resolvePlayer(ctx, creatorID); err != nil {
		return "", err
	}

	m, err := domain.NewMatch(s.newID(), creatorID, score)
	if err != nil {
		return "", err
	}
	m.SetClock(s.now)
	if err := s.matches.Open(m); err != nil {
		return "", err
	}
	return m.ID(), nil
}

// Join seats playerID as the opponent in a joinable match.
func (s *Service) Join(ctx context.Context, matchID, playerID string) (domain.MatchView, error) {
	if err := s.resolvePlayer(ctx, playerID); err != nil {
		return domain.MatchView{}, err
	}
	view, err := s.matches.Join(matchID, playerID)
	if err != nil {
		return domain.MatchView{}, err
	}
	s.publish(ctx, playerJoinedEvent(view))
	return view, nil
}

// Start begins play. Only the creator can start, and only with an opponent.
func (s *Service) Start(ctx context.Context, matchID, requesterID string) (domain.MatchView, error) {
	var view domain.MatchView
	err := s.matches.Promote(matchID, func(m *domain.Match) error {
		if err := m.Start(requesterID); err != nil {
			return err
		}
		view = m.View()
		return nil
	})
	if err != nil {
		return domain.MatchView{}, err
	}
	s.publish(ctx, matchStartedEvent(view))
	return view, nil
}

// EditType changes the starting score of a match that has not started.
func (s *Service) EditType(ctx context.Context, matchID, requesterID string, score domain.StartingScore) (domain.MatchView, error) {
	var view domain.MatchView
	err := s.matches.Lookup(matchID, func(m *domain.Match) error {
		if err := m.EditType(requesterID, score); err != nil {
			return err
		}
		view = m.View()
		return nil
	})
	return view, err
}

// Delete discards a match that has not started.
func (s *Service) Delete(ctx context.Context, matchID, requesterID string) error {
	m, err := s.matches.RemoveIf(matchID, func(m *domain.Match) error {
		return m.AuthorizeDelete(requesterID)
	})
	if err != nil {
		return err
	}
	if opponent, ok := m.Opponent(requesterID); ok {
		s.publish(ctx, matchDeletedEvent(matchID, opponent))
	}
	return nil
}

// RecordRound scores a round for playerID. When the round checks out, the
// match is archived and removed from the registry.
func (s *Service) RecordRound(ctx context.Context, matchID, playerID string, throws []domain.Throw) (RoundOutcome, error) {
	if err := domain.ValidateThrows(throws); err != nil {
		return RoundOutcome{}, err
	}

	var outcome RoundOutcome
	err := s.matches.InProgress(matchID, func(m *domain.Match) error {
		res, err := m.RecordRound(playerID, throws)
		if err != nil {
			return err
		}
		outcome = RoundOutcome{RoundResult: res, Ended: m.State() == domain.StateEnded}
		return nil
	})
	if err != nil {
		return RoundOutcome{}, err
	}

	if !outcome.Ended {
		s.publish(ctx, roundRecordedEvent(matchID, outcome.RoundResult))
		return outcome, nil
	}
	err = s.settle(ctx, matchID, "")
	if err != nil && !errors.Is(err, domain.ErrMatchNotFound) && !errors.Is(err, domain.ErrSettling) {
		// The other two mean a concurrent Settle owns or finished the write.
		return outcome, err
	}
	return outcome, nil
}

// Settle archives an ended match whose earlier archive write failed.
// requesterID must be one of its players.
func (s *Service) Settle(ctx context.Context, matchID, requesterID string) error {
	return s.settle(ctx, matchID, requesterID)
}

// settle marks an ended match as settling, archives it outside the registry
// lock and only then removes it. A failed write clears the mark and leaves the
// match, and its players' participation, in place for a retry.
func (s *Service) settle(ctx context.Context, matchID, requesterID string) error {
	m, err := s.matches.MarkSettling(matchID, func(m *domain.Match) error {
		if requesterID != "" && !m.HasPlayer(requesterID) {
			return domain.ErrNotParticipant
		}
		if m.State() != domain.StateEnded {
			return domain.ErrNotEnded
		}
		return nil
	})
	if err != nil {
		return err
	}

	rec := finishedRecord(m)
	if s.archive == nil {
		s.matches.ClearSettling(matchID)
		return domain.NewError(domain.KindInternal, "match archive not configured")
	}
	if err := s.archive.SaveFinishedMatch(ctx, rec); err != nil && !errors.Is(err, ports.ErrAlreadyArchived) {
		s.matches.ClearSettling(matchID)
		return domain.Wrap(domain.KindInternal, "archive finished match", err)
	}
	s.matches.Remove(matchID)
	s.publish(ctx, matchEndedEvent(rec))
	return nil
}

// List returns live matches for joinable/in_progress and archived matches
// for ended.
func (s *Service) List(ctx context.Context, state domain.State) (Listing, error) {
	switch state {
	case domain.StateJoinable, domain.StateInProgress:
		return Listing{State: state, Matches: s.matches.Snapshot(state)}, nil
	case domain.StateEnded:
		if s.archive == nil {
			return Listing{}, domain.NewError(domain.KindInternal, "match archive not configured")
		}
		finished, err := s.archive.ListFinishedMatches(ctx, s.listLimit)
		if err != nil {
			return Listing{}, domain.Wrap(domain.KindInternal, "list finished matches", err)
		}
		return Listing{State: state, Finished: finished}, nil
	default:
		return Listing{}, domain.ErrInvalidStateFilter
	}
}

// HasActiveMatch reports whether playerID is in a live match.
func (s *Service) HasActiveMatch(playerID string) bool {
	return s.matches.HasActiveParticipation(playerID)
}

// VoiceChannel returns the voice channel of a live match for one of its
// seated players.
func (s *Service) VoiceChannel(matchID, playerID string) (VoiceChannel, error) {
	var channel VoiceChannel
	err := s.matches.Lookup(matchID, func(m *domain.Match) error {
		if !m.HasPlayer(playerID) {
			return domain.ErrNotParticipant
		}
		var err error
		channel, err = voiceChannelFor(m)
		return err
	})
	return channel, err
}

func (s *Service) resolvePlayer(ctx context.Context, playerID string) error {
	if s.users == nil {
		return domain.NewError(domain.KindInternal, "user directory not configured")
	}
	if _, err := s.users.LookupUser(ctx, playerID); err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return domain.ErrUnknownPlayer
		}
		return domain.Wrap(domain.KindInternal, "lookup user", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, events ...ports.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events...)
}

// finishedRecord builds the archive record. EndedAt comes from the match so
// every retry writes the same record.
func finishedRecord(m *domain.Match) ports.FinishedMatch {
	endedAt, _ := m.EndedAt()
	rec := ports.FinishedMatch{
		MatchID:       m.ID(),
		StartingScore: int(m.StartingScore()),
		EndedAt:       endedAt,
		Players:       []ports.PlayerResult{playerResult(m.Player1().Stats())},
	}
	if p2, ok := m.Player2(); ok {
		rec.Players = append(rec.Players, playerResult(p2.Stats()))
	}
	if winner, ok := m.Winner(); ok {
		rec.WinnerID = winner
	}
	return rec
}

func playerResult(stats domain.PlayerStats) ports.PlayerResult {
	return ports.PlayerResult{
		PlayerID:         stats.PlayerID,
		Throws:           stats.Throws,
		TotalScore:       stats.TotalScore,
		AverageScore:     stats.Average(),
		DoublesHit:       stats.DoublesHit,
		DoublesAttempted: stats.DoublesAttempted,
		HighestRound:     stats.HighestRound,
	}
}
