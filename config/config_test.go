package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("DB_MAX_CONNS", "")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, MinBcryptCost, cfg.BcryptCost)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.DBMaxConnIdle)
	assert.Equal(t, 2*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("BCRYPT_COST", "many")
	t.Setenv("PROFILE_CACHE_ENABLED", "maybe")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, MinBcryptCost, cfg.BcryptCost)
	assert.False(t, cfg.ProfileCacheEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver:    StorePostgres,
			JWTSecret:      "s3cret",
			TokenTTL:       time.Hour,
			BcryptCost:     MinBcryptCost,
			DBMaxConns:     20,
			DBQueryTimeout: time.Second,

			DBHealthInterval: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "memory store", mutate: func(c *Config) { c.StoreDriver = StoreMemory; c.DBMaxConns = 0 }},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "  " }, wantErr: "JWT_SECRET is required"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "JWT_TTL"},
		{name: "weak cost", mutate: func(c *Config) { c.BcryptCost = 4 }, wantErr: "BCRYPT_COST"},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "mysql" }, wantErr: "unknown STORE_DRIVER"},
		{name: "no pool", mutate: func(c *Config) { c.DBMaxConns = 0 }, wantErr: "DB_MAX_CONNS"},
		{name: "zero health interval", mutate: func(c *Config) { c.DBHealthInterval = 0 }, wantErr: "DB_HEALTH_INTERVAL"},
		{name: "negative health interval", mutate: func(c *Config) { c.DBHealthInterval = -time.Second }, wantErr: "DB_HEALTH_INTERVAL"},
		{name: "memory store ignores health interval", mutate: func(c *Config) { c.StoreDriver = StoreMemory; c.DBHealthInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "app", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", cfg.PostgresDSN())
}

func TestCORSOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}
