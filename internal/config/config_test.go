package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
}

func TestLoad_MemoryStorage(t *testing.T) {
	setBase(t)
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "logs/reservation.log", cfg.EventLogPath)
}

func TestLoad_MySQLRequiresDatabaseVars(t *testing.T) {
	setBase(t)
	t.Setenv("STORAGE", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	setBase(t)
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL_MIN")
	assert.Contains(t, err.Error(), "sqlite")
}

func TestDSN(t *testing.T) {
	d := DBConfig{User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "tables"}
	assert.Equal(t, "app:pw@tcp(db:3306)/tables?charset=utf8mb4&parseTime=true&loc=UTC", d.DSN())

	d.Pass = ""
	assert.Equal(t, "app@tcp(db:3306)/tables?charset=utf8mb4&parseTime=true&loc=UTC", d.DSN())
}

func TestLoadReservationConfig(t *testing.T) {
	t.Setenv("RESERVATION_SLOT_DURATION", "2h")
	t.Setenv("SWEEP_BATCH", "0")

	c := LoadReservationConfig()
	assert.Equal(t, 2*time.Hour, c.SlotDuration)
	assert.Equal(t, time.Minute, c.SweepInterval)
	assert.Equal(t, 100, c.SweepBatch)
}

func TestLoadRateLimitConfig_TTLCoversRefill(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1m")

	c := LoadRateLimitConfig()
	assert.Equal(t, 5*time.Minute, c.TTL)
}
