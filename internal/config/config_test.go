package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.TokenExpiry())
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Zero(t, cfg.Server.WriteTimeout)
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("WAITINGBOARD_SERVER_PORT", "8081")
	t.Setenv("WAITINGBOARD_DATABASE_DRIVER", "pgx")

	cfg, err := LoadFile(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Port: 5000, Mode: "release"},
			Database:  DatabaseConfig{Driver: "postgres", Host: "localhost", Name: "waitingboard"},
			RateLimit: RateLimitConfig{Enabled: true, RequestsPerSecond: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "bad mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: "server.mode"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database.driver"},
		{name: "missing host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "database.host"},
		{name: "missing name", mutate: func(c *Config) { c.Database.Name = "" }, wantErr: "database.name"},
		{name: "auth without secret", mutate: func(c *Config) { c.Auth.Required = true }, wantErr: "jwt.secret"},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, wantErr: "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
