package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "procurement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, uint64(500), cfg.Registry.MaxTenders)
	assert.Equal(t, uint64(200), cfg.Registry.QualificationFee)
	assert.Equal(t, ClockInterval, cfg.Clock.Mode)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := writeConfig(t, `
listenAddr: ":9090"
logFormat: text
strictAuthority: true
registry:
  maxTenders: 10
clock:
  interval: 30s
  genesis: 2025-01-01T00:00:00Z
kafka:
  brokers: ["localhost:9092"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.StrictAuthority)
	assert.Equal(t, uint64(10), cfg.Registry.MaxTenders)
	assert.Equal(t, uint64(1000), cfg.Registry.MaxBidders, "unset keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Clock.Interval)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Clock.Genesis)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "listenAddr: \":9090\"\n")
	t.Setenv("PROCUREMENT_LISTEN_ADDR", ":7070")
	t.Setenv("PROCUREMENT_REGISTRY_MAX_BIDDERS", "3")
	t.Setenv("PROCUREMENT_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("PROCUREMENT_AUTH_TOKEN_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, uint64(3), cfg.Registry.MaxBidders)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	t.Run("redis clock needs url", func(t *testing.T) {
		cfg := Default()
		cfg.Clock.Mode = ClockRedis
		require.ErrorContains(t, cfg.Validate(), "requires redis.url")
		cfg.Redis.URL = "redis://localhost:6379/0"
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown values", func(t *testing.T) {
		cfg := Default()
		cfg.LogFormat = "xml"
		cfg.Clock.Mode = "sundial"
		err := cfg.Validate()
		require.ErrorContains(t, err, "logFormat")
		require.ErrorContains(t, err, "sundial")
	})

	t.Run("file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "error reading config file")

		_, err = Load(writeConfig(t, "registry: [1, 2"))
		require.ErrorContains(t, err, "error parsing config file")
	})
}
