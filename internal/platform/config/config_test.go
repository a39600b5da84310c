package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.True(t, cfg.UsesDevSecrets())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{
		"BHARATID_ADDR":         ":9999",
		"JWT_SIGNING_KEY":       "prod-key",
		"ENCRYPTION_SECRET":     "prod-secret",
		"TOKEN_TTL":             "30m",
		"STORAGE_BACKEND":       "s3",
		"S3_BUCKET":             "documents",
		"S3_USE_PATH_STYLE":     "true",
		"KAFKA_BROKERS":         "k1:9092, k2:9092,",
		"LOGIN_RATE_PER_MINUTE": "2.5",
		"LOGIN_RATE_BURST":      "3",
		"MAX_UPLOAD_BYTES":      "1024",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "documents", cfg.Storage.S3.Bucket)
	assert.True(t, cfg.Storage.S3.UsePathStyle)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.InDelta(t, 2.5, cfg.RateLimit.LoginPerMinute, 0.0001)
	assert.Equal(t, 3, cfg.RateLimit.LoginBurst)
	assert.Equal(t, int64(1024), cfg.Storage.MaxUploadBytes)
	assert.False(t, cfg.UsesDevSecrets())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bharatid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
auth:
  token_ttl: 15m
  admin:
    email: admin@bharatid.example
    password: Adm1n@pass
storage:
  backend: local
  local_dir: /var/lib/bharatid
log:
  level: debug
`), 0o600))

	cfg, err := load(lookupFrom(map[string]string{
		ConfigFileEnv: path,
		"LOG_LEVEL":   "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "admin@bharatid.example", cfg.Auth.Admin.Email)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Log.Level, "environment wins over file")
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr, "unset file keys keep defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"TOKEN_TTL": "soon"}},
		{"negative ttl", map[string]string{"TOKEN_TTL": "-1m"}},
		{"bad int", map[string]string{"LOGIN_RATE_BURST": "many"}},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "tape"}},
		{"s3 without bucket", map[string]string{"STORAGE_BACKEND": "s3"}},
		{"admin without password", map[string]string{"ADMIN_EMAIL": "a@b.in"}},
		{"missing file", map[string]string{ConfigFileEnv: "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
