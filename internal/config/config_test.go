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

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "https://fakestoreapi.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Session.LoginDelay)
	assert.Equal(t, 12, cfg.Listing.PerPage)
	assert.Equal(t, 300*time.Millisecond, cfg.Listing.Debounce)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  driver: redis
  redis:
    addr: redis:6379
session:
  login_delay: 1s
listing:
  per_page: 24
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("STOREFRONT_HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, time.Second, cfg.Session.LoginDelay)
	assert.Equal(t, 24, cfg.Listing.PerPage)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "cassandra")
	_, err := Load("")
	require.ErrorContains(t, err, "unknown storage driver")
}

func TestLoad_UnknownTracingExporter(t *testing.T) {
	t.Setenv("STOREFRONT_TRACING_EXPORTER", "zipkin")
	_, err := Load("")
	require.ErrorContains(t, err, "unknown tracing exporter")
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "shop"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", c.DSN())
}
