package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseEnv(t *testing.T) {
	t.Run("dotenv file", func(t *testing.T) {
		stubEnv(t, nil)
		path := writeEnvFile(t, `
TUNIGUARD_SERVER_URL=https://api.tuniguard.tn
TUNIGUARD_ANALYTICS_INTERVAL=1m
TUNIGUARD_ANALYTICS_DAYS=14
TUNIGUARD_PERSIST_CHAT_ERRORS=true
TUNIGUARD_LOG_FORMAT=json
TUNIGUARD_S3_BUCKET=bucket
TUNIGUARD_S3_ACCESS_KEY=ak
TUNIGUARD_S3_SECRET_KEY=sk
`)
		cfg := defaults()
		require.NoError(t, parseEnv(&cfg, []string{"-env", path}))

		assert.Equal(t, "https://api.tuniguard.tn", cfg.ServerURL)
		assert.Equal(t, time.Minute, cfg.AnalyticsInterval)
		assert.Equal(t, 14, cfg.AnalyticsDays)
		assert.True(t, cfg.PersistChatErrors)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "bucket", cfg.Export.S3Bucket)
		assert.Equal(t, "ak", cfg.Export.S3AccessKey)
		assert.Equal(t, "sk", cfg.Export.S3SecretKey)
	})

	t.Run("process env wins over file", func(t *testing.T) {
		stubEnv(t, map[string]string{"TUNIGUARD_SERVER_URL": "http://from-env"})
		path := writeEnvFile(t, "TUNIGUARD_SERVER_URL=http://from-file\n")

		cfg := defaults()
		require.NoError(t, parseEnv(&cfg, []string{"-env", path}))
		assert.Equal(t, "http://from-env", cfg.ServerURL)
	})

	t.Run("missing file ignored", func(t *testing.T) {
		stubEnv(t, nil)
		cfg := defaults()
		require.NoError(t, parseEnv(&cfg, []string{"-env", filepath.Join(t.TempDir(), "none.env")}))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("bad values", func(t *testing.T) {
		for _, kv := range []map[string]string{
			{"TUNIGUARD_REQUEST_TIMEOUT": "soon"},
			{"TUNIGUARD_ANALYTICS_DAYS": "week"},
			{"TUNIGUARD_PERSIST_CHAT_ERRORS": "perhaps"},
		} {
			stubEnv(t, kv)
			cfg := defaults()
			assert.Error(t, parseEnv(&cfg, []string{"-env", "none.env"}))
		}
	})
}
