package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the TuniGuard API
//	-d string   local data directory
//	-t int      request timeout (seconds)
//	-r int      national analytics refresh interval (seconds)
//	-i int      online check interval (seconds)
//
// Other flags are filtered out first so the JSON and env layers can share
// the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-r", "-i"})

	fs := flag.NewFlagSet("tuniguard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the TuniGuard API")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	analytics := fs.Int("r", int(cfg.AnalyticsInterval.Seconds()), "analytics refresh interval (in seconds)")
	online := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only overwrite what was given so sub-second values from JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "r":
			cfg.AnalyticsInterval = time.Duration(*analytics) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*online) * time.Second
		}
	})
	return nil
}
