package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	envPrefix      = "TUNIGUARD_"
	defaultEnvFile = ".env"
)

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays cfg with TUNIGUARD_* variables. Values from the
// process environment win over the dotenv file chosen with -env (default
// .env); a missing dotenv file is ignored.
func parseEnv(cfg *Config, args []string) error {
	file := flagx.EnvFileFlag(args)
	if file == "" {
		file = defaultEnvFile
	}

	dotenv, err := godotenv.Read(file)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read env file %s: %w", file, err)
	}

	get := func(key string) (string, bool) {
		if v, ok := lookupEnv(envPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[envPrefix+key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := get(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_URL", &cfg.ServerURL)
	str("DATA_DIR", &cfg.DataDir)
	if err := dur("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := dur("ANALYTICS_INTERVAL", &cfg.AnalyticsInterval); err != nil {
		return err
	}
	if err := dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval); err != nil {
		return err
	}
	if v, ok := get("ANALYTICS_DAYS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sANALYTICS_DAYS: %w", envPrefix, err)
		}
		cfg.AnalyticsDays = n
	}
	if v, ok := get("PERSIST_CHAT_ERRORS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPERSIST_CHAT_ERRORS: %w", envPrefix, err)
		}
		cfg.PersistChatErrors = b
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_BACKEND", &cfg.Log.Backend)

	str("EXPORT_DIR", &cfg.Export.Dir)
	str("S3_BUCKET", &cfg.Export.S3Bucket)
	str("S3_REGION", &cfg.Export.S3Region)
	str("S3_ENDPOINT", &cfg.Export.S3Endpoint)
	str("S3_ACCESS_KEY", &cfg.Export.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.Export.S3SecretKey)

	return nil
}
