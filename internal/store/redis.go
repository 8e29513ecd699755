package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/models"
)

// RedisStore keeps data under keys prefixed with the database name:
//
//	<prefix>:users                  hash     username -> user JSON
//	<prefix>:users:seq              counter
//	<prefix>:strategies:seq         counter
//	<prefix>:strategies:user:<id>   zset     strategy JSON scored by created_at (µs)
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string, poolSize int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		PoolSize: poolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// OpenRedis connects to cfg.DBHost:cfg.DBPort. DB_USER is not used; Redis
// auth is password only here.
func OpenRedis(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	rdb, err := NewRedisClient(ctx, net.JoinHostPort(cfg.DBHost, cfg.DBPort), cfg.DBPassword, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return NewRedisStore(rdb, cfg.DBName), nil
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Close() error { return s.rdb.Close() }

// redisUser is the stored form; models.User hides the hash from JSON.
type redisUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *RedisStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	id, err := s.rdb.Incr(ctx, s.key("users", "seq")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis next user id: %w", err)
	}
	data, err := json.Marshal(redisUser{ID: id, Username: username, Password: hashedPassword})
	if err != nil {
		return nil, err
	}

	ok, err := s.rdb.HSetNX(ctx, s.key("users"), username, data).Result()
	if err != nil {
		return nil, fmt.Errorf("redis create user: %w", err)
	}
	if !ok {
		return nil, ErrUserExists
	}
	return &models.User{ID: id, Username: username, Password: hashedPassword}, nil
}

func (s *RedisStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	data, err := s.rdb.HGet(ctx, s.key("users"), username).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}

	var ru redisUser
	if err := json.Unmarshal(data, &ru); err != nil {
		return nil, fmt.Errorf("redis decode user: %w", err)
	}
	return &models.User{ID: ru.ID, Username: ru.Username, Password: ru.Password}, nil
}

func (s *RedisStore) InsertStrategy(ctx context.Context, st *models.Strategy) error {
	id, err := s.rdb.Incr(ctx, s.key("strategies", "seq")).Result()
	if err != nil {
		return fmt.Errorf("redis next strategy id: %w", err)
	}
	st.ID = id
	st.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	err = s.rdb.ZAdd(ctx, s.key("strategies", "user", strconv.FormatInt(st.UserID, 10)), redis.Z{
		Score:  float64(st.CreatedAt.UnixMicro()),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis insert strategy: %w", err)
	}
	return nil
}

func (s *RedisStore) ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error) {
	members, err := s.rdb.ZRevRange(ctx, s.key("strategies", "user", strconv.FormatInt(userID, 10)), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list strategies: %w", err)
	}

	out := make([]models.Strategy, 0, len(members))
	for _, m := range members {
		var st models.Strategy
		if err := json.Unmarshal([]byte(m), &st); err != nil {
			return nil, fmt.Errorf("redis decode strategy: %w", err)
		}
		out = append(out, st)
	}
	sortNewestFirst(out)
	return out, nil
}
