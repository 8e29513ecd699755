package store

import (
	"context"
	"sync"
	"time"

	"github.com/ayush/ticket-simulator/backend/internal/models"
)

// MemoryStore keeps everything in process memory. It is the fallback when the
// configured database cannot be reached at startup; nothing survives a
// restart.
type MemoryStore struct {
	mu          sync.RWMutex
	users       []models.User
	byName      map[string]int // username -> index into users
	strategies  []models.Strategy
	nextUserID  int64
	nextStratID int64
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byName:      make(map[string]int),
		nextUserID:  1,
		nextStratID: 1,
		now:         time.Now,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, username, hashedPassword string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return nil, ErrUserExists
	}
	u := models.User{ID: s.nextUserID, Username: username, Password: hashedPassword}
	s.nextUserID++
	s.byName[username] = len(s.users)
	s.users = append(s.users, u)
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *MemoryStore) InsertStrategy(_ context.Context, st *models.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.ID = s.nextStratID
	s.nextStratID++
	st.CreatedAt = s.now()
	s.strategies = append(s.strategies, *st)
	return nil
}

func (s *MemoryStore) ListStrategiesByUser(_ context.Context, userID int64) ([]models.Strategy, error) {
	s.mu.RLock()
	out := make([]models.Strategy, 0)
	for _, st := range s.strategies {
		if st.UserID == userID {
			out = append(out, st)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}
