package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string
	Format  string
	Backend string
}

// ExportConfig controls where reports are written. S3 is used when
// S3Bucket is set, the local Dir otherwise.
type ExportConfig struct {
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Config holds runtime settings for the TuniGuard CLI.
type Config struct {
	ServerURL           string
	DataDir             string
	RequestTimeout      time.Duration
	AnalyticsInterval   time.Duration
	OnlineCheckInterval time.Duration
	AnalyticsDays       int
	PersistChatErrors   bool
	Log                 LogConfig
	Export              ExportConfig
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.DataDir = ".tuniguard"
	c.RequestTimeout = 15 * time.Second
	c.AnalyticsInterval = 30 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.AnalyticsDays = 7
	c.PersistChatErrors = false
	c.Log = LogConfig{Level: "info", Format: "text", Backend: "slog"}
	c.Export = ExportConfig{Dir: "reports", S3Region: "us-east-1"}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server url is empty")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q must be an absolute http(s) URL", c.ServerURL)
	}
	if c.DataDir == "" {
		return errors.New("data dir is empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.AnalyticsInterval <= 0 {
		return errors.New("analytics interval must be positive")
	}
	if c.OnlineCheckInterval <= 0 {
		return errors.New("online check interval must be positive")
	}
	if c.AnalyticsDays <= 0 {
		return errors.New("analytics days must be positive")
	}
	switch c.Log.Backend {
	case "slog", "zap":
	default:
		return fmt.Errorf("unknown log backend %q", c.Log.Backend)
	}
	if c.Export.S3Bucket != "" && c.Export.S3Region == "" {
		return errors.New("export s3 region is required when a bucket is set")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then flags. Later sources take precedence. args excludes
// the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
