package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"API_PORT", "RECORD_DRIVER", "DATABASE_URL", "BOLT_PATH", "AUTH_DATABASE_URL",
		"SESSION_TTL", "SESSION_RESOLVE_TIMEOUT_MS", "READ_TIMEOUT", "WRITE_TIMEOUT",
		"AUTO_MIGRATE", "LOG_LEVEL", "METRICS_NAMESPACE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "travel_desk", cfg.MetricsNamespace)

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "postgres without DATABASE_URL")
}

func TestLoad_AuthDatabaseFallsBackToDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/travel")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/travel", cfg.AuthDatabaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("RECORD_DRIVER")
	os.Unsetenv("BOLT_PATH")
	os.Unsetenv("AUTO_MIGRATE")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECORD_DRIVER=bolt\nBOLT_PATH=/tmp/desk.db\nAUTO_MIGRATE=no\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverBolt, cfg.Driver)
	assert.Equal(t, "/tmp/desk.db", cfg.BoltPath)
	assert.False(t, cfg.AutoMigrate)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"bolt ok", Config{Port: "8080", Driver: DriverBolt, BoltPath: "x.db", SessionTTL: time.Hour}, false},
		{"unknown driver", Config{Port: "8080", Driver: "mysql", SessionTTL: time.Hour}, true},
		{"bolt without path", Config{Port: "8080", Driver: DriverBolt, SessionTTL: time.Hour}, true},
		{"zero ttl", Config{Port: "8080", Driver: DriverBolt, BoltPath: "x.db"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
