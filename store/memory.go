package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"matchday-system/models"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu            sync.RWMutex
	matches       map[string]*models.Match
	players       map[string]*models.Player
	teams         map[string]*models.Team
	trophies      map[string]*models.Trophy
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:  make(map[string]*models.Match),
		players:  make(map[string]*models.Player),
		teams:    make(map[string]*models.Team),
		trophies: make(map[string]*models.Trophy),
	}
}

func (s *MemoryStore) InsertMatch(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; ok {
		return fmt.Errorf("insert match %s: %w", m.ID, ErrAlreadyExists)
	}
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("get match %s: %w", id, ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) ReplaceMatch(_ context.Context, m *models.Match, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.matches[m.ID]
	if !ok {
		return fmt.Errorf("replace match %s: %w", m.ID, ErrNotFound)
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("replace match %s: %w", m.ID, ErrVersionConflict)
	}
	cp := *m
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now()
	s.matches[m.ID] = &cp
	m.Version = cp.Version
	return nil
}

func (s *MemoryStore) MatchesByStatus(_ context.Context, statuses ...models.MatchStatus) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Match
	for _, m := range s.matches {
		for _, st := range statuses {
			if m.Status == st {
				out = append(out, *m)
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("get player %s: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpsertPlayer(_ context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.players[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, fmt.Errorf("get team %s: %w", id, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) UpsertTeam(_ context.Context, t *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.teams[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTrophy(_ context.Context, id string) (*models.Trophy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trophies[id]
	if !ok {
		return nil, fmt.Errorf("get trophy %s: %w", id, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// PutTrophy seeds a trophy; the engine itself never writes trophies.
func (s *MemoryStore) PutTrophy(t *models.Trophy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.trophies[t.ID] = &cp
}

func (s *MemoryStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *MemoryStore) DeleteNotificationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	var removed int64
	for _, n := range s.notifications {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return removed, nil
}

// Notifications returns a snapshot of stored notifications, for tests.
func (s *MemoryStore) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
