package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

// Store keeps sessions and favorites in process memory. It backs tests and
// deployments that do not need dialog state to survive a restart.
type Store struct {
	mu        sync.RWMutex
	sessions  map[int64]domain.Session
	favorites map[int64][]domain.Favorite
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		sessions:  make(map[int64]domain.Session),
		favorites: make(map[int64][]domain.Favorite),
	}
}

// Load returns the stored session or nil if the user has none
func (s *Store) Load(_ context.Context, ownerID int64) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[ownerID]
	if !ok {
		return nil, nil
	}
	return copySession(session), nil
}

// Save upserts the full session state
func (s *Store) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.OwnerID] = *copySession(*session)
	return nil
}

// Clear removes the session
func (s *Store) Clear(_ context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, ownerID)
	return nil
}

// Add stores the candidate in the owner's favorites, once per pair
func (s *Store) Add(_ context.Context, ownerID int64, candidate domain.Candidate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fav := range s.favorites[ownerID] {
		if fav.Candidate.ID == candidate.ID {
			return false, nil
		}
	}

	s.favorites[ownerID] = append(s.favorites[ownerID], domain.Favorite{
		Candidate: candidate,
		AddedAt:   time.Now(),
	})
	return true, nil
}

// List returns the owner's favorites, most recently added first
func (s *Store) List(_ context.Context, ownerID int64) ([]domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.favorites[ownerID]
	out := make([]domain.Favorite, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

// copySession detaches the candidate slice so callers cannot mutate stored state
func copySession(session domain.Session) *domain.Session {
	session.Candidates = append([]domain.Candidate(nil), session.Candidates...)
	return &session
}
