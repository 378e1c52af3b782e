package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "pos", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.StockTake.FinalizeLockTTL)
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		t.Setenv("POS_APP_PORT", "9000")
		t.Setenv("POS_DATABASE_DRIVER", "sqlite")
		t.Setenv("POS_DATABASE_SQLITE_PATH", "/tmp/pos-test.db")
		t.Setenv("POS_REDIS_ENABLED", "true")
		t.Setenv("POS_REDIS_HOST", "cache.local")
		t.Setenv("POS_STOCKTAKE_FINALIZE_LOCK_TTL", "2m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/pos-test.db", cfg.Database.SQLitePath)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, 2*time.Minute, cfg.StockTake.FinalizeLockTTL)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("POS_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("jwt secret required when enabled", func(t *testing.T) {
		t.Setenv("POS_JWT_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestValidateProduction(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.JWT = JWTConfig{Enabled: true, Secret: "0123456789abcdef0123456789abcdef"}
		cfg.Database.SSLMode = "require"
		cfg.Redis.Enabled = true
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.validate())
	})

	t.Run("sqlite not allowed", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "sqlite"
		assert.Error(t, cfg.validate())
	})

	t.Run("redis required", func(t *testing.T) {
		cfg := base()
		cfg.Redis.Enabled = false
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss word", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%20word@db:5432/pos?sslmode=disable", cfg.DSN())
}
