package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("store: username already exists")
)

// Store is the persistence surface the HTTP layer needs. Every backend,
// including the in-memory fallback, implements it.
type Store interface {
	CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	InsertStrategy(ctx context.Context, s *models.Strategy) error
	ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error)
	// Name identifies the backend in logs and the health probe.
	Name() string
	Close() error
}

// Open connects to the backend named by cfg.DBDriver, verifies it is
// reachable within cfg.DBConnectTimeout and bootstraps its schema.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBConnectTimeout)
	defer cancel()

	var (
		s   Store
		err error
	)
	switch cfg.DBDriver {
	case "mysql":
		s, err = OpenMySQL(ctx, cfg)
	case "postgres":
		s, err = OpenPostgres(ctx, cfg)
	case "mongo":
		s, err = OpenMongo(ctx, cfg)
	case "redis":
		s, err = OpenRedis(ctx, cfg)
	case "memory":
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// sortNewestFirst orders history by created_at descending, newest id first
// among records created at the same instant.
func sortNewestFirst(out []models.Strategy) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}
