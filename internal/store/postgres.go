package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore handles users and strategies in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func postgresDSN(cfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:   net.JoinHostPort(cfg.DBHost, cfg.DBPort),
		Path:   "/" + cfg.DBName,
	}
	return u.String()
}

// OpenPostgres creates a pool of at most cfg.DBMaxConns connections, pings
// it and creates the tables if missing.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	pcfg, err := pgxpool.ParseConfig(postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	pcfg.MaxConns = int32(cfg.DBMaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := NewPostgresStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the users and strategies tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id       BIGSERIAL PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL
		);
		CREATE TABLE IF NOT EXISTS strategies (
			id           BIGSERIAL PRIMARY KEY,
			user_id      BIGINT       NOT NULL,
			platform     VARCHAR(64)  NOT NULL,
			entry_time   VARCHAR(64)  NOT NULL,
			ticket_type  VARCHAR(64)  NOT NULL,
			network      VARCHAR(64)  NOT NULL,
			success_rate INT          NOT NULL,
			suggestion   VARCHAR(255) NOT NULL,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_strategies_user_created ON strategies (user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	u := models.User{Username: username, Password: hashedPassword}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password)
		 VALUES ($1, $2)
		 RETURNING id`,
		username, hashedPassword,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) InsertStrategy(ctx context.Context, st *models.Strategy) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO strategies (user_id, platform, entry_time, ticket_type, network, success_rate, suggestion)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		st.UserID, st.Platform, st.EntryTime, st.TicketType, st.Network, st.SuccessRate, st.Suggestion,
	).Scan(&st.ID, &st.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, platform, entry_time, ticket_type, network, success_rate, suggestion, created_at
		 FROM strategies WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Strategy, error) {
		var st models.Strategy
		err := row.Scan(&st.ID, &st.UserID, &st.Platform, &st.EntryTime, &st.TicketType,
			&st.Network, &st.SuccessRate, &st.Suggestion, &st.CreatedAt)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	if out == nil {
		out = []models.Strategy{}
	}
	return out, nil
}
