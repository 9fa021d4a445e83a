package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, RestockConsistent, cfg.RestockPolicy)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 5432, cfg.DBPort)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("RESTOCK_POLICY", RestockLegacy)
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, RestockLegacy, cfg.RestockPolicy)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "memory", cfg.StoreDriver)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME: catalog\nSMTP_PORT: 2525\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "catalog", cfg.DBName)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	t.Setenv("RESTOCK_POLICY", "sometimes")

	_, err := Load("")
	assert.ErrorContains(t, err, "RESTOCK_POLICY")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
