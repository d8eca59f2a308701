// Package config loads application configuration from environment
// variables.  A .env file in the working directory is honoured by the
// command layer before Load runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env          string        // APP_ENV (dev, test, prod)
	Port         string        // APP_PORT
	LogLevel     string        // LOG_LEVEL: debug, info, warn, error
	Storage      string        // STORAGE: mysql or memory
	DB           DBConfig      // DB_*; required only for mysql storage
	JWTSecret    string        // JWT_SECRET
	AccessTTL    time.Duration // ACCESS_TOKEN_TTL_MIN, in minutes
	RefreshTTL   time.Duration // REFRESH_TOKEN_TTL_DAYS, in days
	BcryptCost   int           // BCRYPT_COST
	RabbitURL    string        // RABBITMQ_URL; empty disables publishing
	EventLogPath string        // EVENT_LOG_PATH, written by the event consumer
}

// DBConfig describes the MySQL connection.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// DSN renders the go-sql-driver connection string.  parseTime maps
// DATETIME to time.Time and loc=UTC keeps every instant in UTC.
func (d DBConfig) DSN() string {
	auth := d.User
	if d.Pass != "" {
		auth = fmt.Sprintf("%s:%s", d.User, d.Pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, d.Host, d.Port, d.Name)
}

// Load reads the configuration.  Every missing or malformed required
// variable is reported in the returned error.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:          l.must("APP_ENV"),
		Port:         envStr("APP_PORT", "8080"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		Storage:      strings.ToLower(envStr("STORAGE", StorageMySQL)),
		JWTSecret:    l.must("JWT_SECRET"),
		AccessTTL:    time.Duration(l.mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTL:   time.Duration(l.mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,
		BcryptCost:   envInt("BCRYPT_COST", 12),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		EventLogPath: envStr("EVENT_LOG_PATH", "logs/reservation.log"),
	}
	switch cfg.Storage {
	case StorageMySQL:
		cfg.DB = DBConfig{
			User: l.must("DB_USER"),
			Pass: os.Getenv("DB_PASS"),
			Host: l.must("DB_HOST"),
			Port: l.must("DB_PORT"),
			Name: l.must("DB_NAME"),
		}
	case StorageMemory:
	default:
		l.errs = append(l.errs, fmt.Errorf("invalid STORAGE %q", cfg.Storage))
	}
	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader collects errors for required variables so they can be reported
// together.
type loader struct{ errs []error }

// must retrieves a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

// mustInt is like must but converts the value into an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}
