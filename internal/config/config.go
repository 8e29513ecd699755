package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string

	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBMaxConns       int
	DBConnectTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set in the process win.
func Load() *Config {
	_ = godotenv.Load()

	driver := getenv("DB_DRIVER", "mysql")
	return &Config{
		Port:             getenv("PORT", "3000"),
		DBDriver:         driver,
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           getenv("DB_PORT", defaultPort(driver)),
		DBUser:           getenv("DB_USER", "root"),
		DBPassword:       getenv("DB_PASSWORD", ""),
		DBName:           getenv("DB_NAME", "ticket_simulator"),
		DBMaxConns:       getenvInt("DB_MAX_CONNS", 10),
		DBConnectTimeout: getenvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "json"),
	}
}

func defaultPort(driver string) string {
	switch driver {
	case "postgres":
		return "5432"
	case "mongo":
		return "27017"
	case "redis":
		return "6379"
	default:
		return "3306"
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
