package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 100, cfg.Audit.MinImpressions)
	assert.Equal(t, 10, cfg.Audit.MinClicks)
	assert.Equal(t, 5, cfg.Monitor.MaxChain)
	assert.Equal(t, 2, cfg.Monitor.ErrorThreshold)
	assert.Equal(t, 3, cfg.Tasks.MaxAttempts)
	assert.Equal(t, "0 * * * *", cfg.Tasks.RefreshCron)
	assert.Len(t, cfg.Tasks.RefreshURLs, 3)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.yaml")
	yaml := `
http:
  timeout: 3s
logging:
  format: json
  level: debug
monitor:
  max_chain: 7
tasks:
  refresh_urls:
    - https://shop.example.org/a
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SEO_AUDIT_REDIS_HOST", "redis.internal:6380")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 7, cfg.Monitor.MaxChain)
	assert.Equal(t, []string{"https://shop.example.org/a"}, cfg.Tasks.RefreshURLs)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Host)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Tasks.MaxAttempts = 0
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "seo", SSL: true}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=seo sslmode=require", p.DSN())
}
