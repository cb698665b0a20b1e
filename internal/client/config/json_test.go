package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"server_url":            "https://www.example:9000",
		"online_check_interval": "10s",
		"request_timeout":       int64(2 * time.Second),
		"analytics_days":        30,
		"persist_chat_errors":   true,
		"log":                   map[string]any{"backend": "zap", "level": "debug"},
		"export":                map[string]any{"s3_bucket": "reports", "s3_endpoint": "http://minio:9000"},
	})

	t.Run("loads from -config", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(&cfg, []string{"-config", path}))

		assert.Equal(t, "https://www.example:9000", cfg.ServerURL)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 30, cfg.AnalyticsDays)
		assert.True(t, cfg.PersistChatErrors)
		assert.Equal(t, "zap", cfg.Log.Backend)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format, "unset keys keep earlier values")
		assert.Equal(t, "reports", cfg.Export.S3Bucket)
		assert.Equal(t, "us-east-1", cfg.Export.S3Region)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		cfg := Config{ServerURL: "http://defaults:1234", OnlineCheckInterval: 42 * time.Second}
		require.NoError(t, parseJson(&cfg, nil))

		assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := Config{}
		require.Error(t, parseJson(&cfg, []string{"-c", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		cfg := Config{}
		require.Error(t, parseJson(&cfg, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
