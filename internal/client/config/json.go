package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tuniguard/internal/flagx"
	"github.com/dmitrijs2005/tuniguard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-valued fields mean "not set" and leave the earlier value alone.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	DataDir             string         `json:"data_dir"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	AnalyticsInterval   timex.Duration `json:"analytics_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AnalyticsDays       *int           `json:"analytics_days"`
	PersistChatErrors   *bool          `json:"persist_chat_errors"`
	Log                 struct {
		Level   string `json:"level"`
		Format  string `json:"format"`
		Backend string `json:"backend"`
	} `json:"log"`
	Export struct {
		Dir         string `json:"dir"`
		S3Bucket    string `json:"s3_bucket"`
		S3Region    string `json:"s3_region"`
		S3Endpoint  string `json:"s3_endpoint"`
		S3AccessKey string `json:"s3_access_key"`
		S3SecretKey string `json:"s3_secret_key"`
	} `json:"export"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. With
// no such flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DataDir, jc.DataDir)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AnalyticsInterval.Duration != 0 {
		cfg.AnalyticsInterval = jc.AnalyticsInterval.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AnalyticsDays != nil {
		cfg.AnalyticsDays = *jc.AnalyticsDays
	}
	if jc.PersistChatErrors != nil {
		cfg.PersistChatErrors = *jc.PersistChatErrors
	}

	setString(&cfg.Log.Level, jc.Log.Level)
	setString(&cfg.Log.Format, jc.Log.Format)
	setString(&cfg.Log.Backend, jc.Log.Backend)

	setString(&cfg.Export.Dir, jc.Export.Dir)
	setString(&cfg.Export.S3Bucket, jc.Export.S3Bucket)
	setString(&cfg.Export.S3Region, jc.Export.S3Region)
	setString(&cfg.Export.S3Endpoint, jc.Export.S3Endpoint)
	setString(&cfg.Export.S3AccessKey, jc.Export.S3AccessKey)
	setString(&cfg.Export.S3SecretKey, jc.Export.S3SecretKey)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
