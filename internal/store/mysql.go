package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/models"
)

const mysqlDuplicateEntry = 1062

// MySQLStore handles users and strategies in MySQL.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// mysqlDSN builds the driver DSN. parseTime makes created_at scan into
// time.Time; the driver's default collation is already utf8mb4.
func mysqlDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}

// OpenMySQL opens a pool capped at cfg.DBMaxConns, pings it and creates the
// tables if missing.
func OpenMySQL(ctx context.Context, cfg *config.Config) (*MySQLStore, error) {
	db, err := sql.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxConns)
	db.SetMaxIdleConns(cfg.DBMaxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}

	s := NewMySQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the users and strategies tables if they don't exist.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS users (
			id       BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL
		) DEFAULT CHARSET = utf8mb4`, `
		CREATE TABLE IF NOT EXISTS strategies (
			id           BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id      BIGINT       NOT NULL,
			platform     VARCHAR(64)  NOT NULL,
			entry_time   VARCHAR(64)  NOT NULL,
			ticket_type  VARCHAR(64)  NOT NULL,
			network      VARCHAR(64)  NOT NULL,
			success_rate INT          NOT NULL,
			suggestion   VARCHAR(255) NOT NULL,
			created_at   TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
			INDEX idx_strategies_user_created (user_id, created_at)
		) DEFAULT CHARSET = utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("mysql migrate: %w", err)
		}
	}
	return nil
}

func (s *MySQLStore) Name() string { return "mysql" }

func (s *MySQLStore) Close() error { return s.db.Close() }

func (s *MySQLStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?)`,
		username, hashedPassword,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &models.User{ID: id, Username: username, Password: hashedPassword}, nil
}

func (s *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *MySQLStore) InsertStrategy(ctx context.Context, st *models.Strategy) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO strategies (user_id, platform, entry_time, ticket_type, network, success_rate, suggestion)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.UserID, st.Platform, st.EntryTime, st.TicketType, st.Network, st.SuccessRate, st.Suggestion,
	)
	if err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}
	st.ID = id
	return nil
}

func (s *MySQLStore) ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, platform, entry_time, ticket_type, network, success_rate, suggestion, created_at
		 FROM strategies WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer rows.Close()

	out := make([]models.Strategy, 0)
	for rows.Next() {
		var st models.Strategy
		if err := rows.Scan(&st.ID, &st.UserID, &st.Platform, &st.EntryTime, &st.TicketType,
			&st.Network, &st.SuccessRate, &st.Suggestion, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("list strategies: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
