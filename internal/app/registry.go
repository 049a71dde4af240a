package app

import (
	"sort"
	"sync"

	"darts/internal/domain"
)

// Registry tracks live matches, split into those waiting for a second player
// and those being played. A match id lives in at most one of the two tables.
//
// Every method holds the registry lock for its whole body, including the
// callbacks passed to Joinable, InProgress and Promote, so a match is never
// mutated by two callers at once. Callbacks must stay in memory.
//
// An ended match stays in the in-progress table while it is being archived,
// so its players count as active until Remove.
type Registry struct {
	mu         sync.Mutex
	joinable   map[string]*domain.Match
	inProgress map[string]*domain.Match
	settling   map[string]bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		joinable:   make(map[string]*domain.Match),
		inProgress: make(map[string]*domain.Match),
		settling:   make(map[string]bool),
	}
}

// HasActiveParticipation reports whether playerID is in any live match.
func (r *Registry) HasActiveParticipation(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasActiveParticipationLocked(playerID)
}

func (r *Registry) hasActiveParticipationLocked(playerID string) bool {
	for _, m := range r.joinable {
		if m.HasPlayer(playerID) {
			return true
		}
	}
	for _, m := range r.inProgress {
		if m.HasPlayer(playerID) {
			return true
		}
	}
	return false
}

// Open adds a new match to the joinable table unless its creator already
// plays elsewhere.
func (r *Registry) Open(m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasActiveParticipationLocked(m.Player1().ID()) {
		return domain.ErrPlayerBusy
	}
	r.joinable[m.ID()] = m
	return nil
}

// Join seats playerID in a joinable match.
func (r *Registry) Join(matchID, playerID string) (domain.MatchView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.joinable[matchID]
	if !ok {
		return domain.MatchView{}, domain.ErrMatchNotFound
	}
	if !m.IsCreator(playerID) && r.hasActiveParticipationLocked(playerID) {
		return domain.MatchView{}, domain.ErrPlayerBusy
	}
	if err := m.Join(playerID); err != nil {
		return domain.MatchView{}, err
	}
	return m.View(), nil
}

// Joinable runs fn against a match in the joinable table.
func (r *Registry) Joinable(matchID string, fn func(*domain.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.joinable[matchID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	return fn(m)
}

// InProgress runs fn against a match in the in-progress table.
func (r *Registry) InProgress(matchID string, fn func(*domain.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.inProgress[matchID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	return fn(m)
}

// Promote runs fn against a joinable match and, if it succeeds, moves the
// match to the in-progress table in the same critical section.
func (r *Registry) Promote(matchID string, fn func(*domain.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.joinable[matchID]
	if !ok {
		if _, started := r.inProgress[matchID]; started {
			return domain.ErrNotJoinable
		}
		return domain.ErrMatchNotFound
	}
	if fn != nil {
		if err := fn(m); err != nil {
			return err
		}
	}
	delete(r.joinable, matchID)
	r.inProgress[matchID] = m
	return nil
}

// Remove deletes a match from whichever table holds it and clears any
// settling mark.
func (r *Registry) Remove(matchID string) (*domain.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(matchID)
}

func (r *Registry) removeLocked(matchID string) (*domain.Match, bool) {
	delete(r.settling, matchID)
	if m, ok := r.joinable[matchID]; ok {
		delete(r.joinable, matchID)
		return m, true
	}
	if m, ok := r.inProgress[matchID]; ok {
		delete(r.inProgress, matchID)
		return m, true
	}
	return nil, false
}

// RemoveIf removes a match when fn accepts it.
func (r *Registry) RemoveIf(matchID string, fn func(*domain.Match) error) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.lookupLocked(matchID)
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	r.removeLocked(matchID)
	return m, nil
}

// MarkSettling flags a match accepted by fn as being archived and returns it.
// Only one caller can hold the mark; the match stays registered until Remove
// or ClearSettling.
func (r *Registry) MarkSettling(matchID string, fn func(*domain.Match) error) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.lookupLocked(matchID)
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	if r.settling[matchID] {
		return nil, domain.ErrSettling
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	r.settling[matchID] = true
	return m, nil
}

// ClearSettling drops the settling mark after a failed archive write.
func (r *Registry) ClearSettling(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.settling, matchID)
}

func (r *Registry) lookupLocked(matchID string) (*domain.Match, bool) {
	if m, ok := r.joinable[matchID]; ok {
		return m, true
	}
	m, ok := r.inProgress[matchID]
	return m, ok
}

// Lookup runs fn against a match in either table.
func (r *Registry) Lookup(matchID string, fn func(*domain.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.lookupLocked(matchID)
	if !ok {
		return domain.ErrMatchNotFound
	}
	return fn(m)
}

// Snapshot returns views of every live match currently in state, ordered by id.
func (r *Registry) Snapshot(state domain.State) []domain.MatchView {
	r.mu.Lock()
	defer r.mu.Unlock()

	var views []domain.MatchView
	for _, table := range []map[string]*domain.Match{r.joinable, r.inProgress} {
		for _, m := range table {
			if m.State() == state {
				views = append(views, m.View())
			}
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}
