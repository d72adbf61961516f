package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ORDERD_HTTP_ADDR", ":9090")
	t.Setenv("ORDERD_STORE_DRIVER", "sqlite3")
	t.Setenv("ORDERD_STORE_DSN", "orders.db")
	t.Setenv("ORDERD_STORE_QUERY_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "sqlite3", cfg.StoreDriver)
	assert.Equal(t, "orders.db", cfg.StoreDSN)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
}

func TestLoadKafkaBrokersFromEnv(t *testing.T) {
	t.Setenv("ORDERD_KAFKA_BROKERS", "host1:9092,host2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"host1:9092", "host2:9092"}, cfg.KafkaBrokers)

	t.Run("single broker", func(t *testing.T) {
		t.Setenv("ORDERD_KAFKA_BROKERS", "host1:9092")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"host1:9092"}, cfg.KafkaBrokers)
	})
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ORDERD_STORE_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported store driver")
}
