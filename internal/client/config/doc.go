// Package config loads runtime configuration for the TuniGuard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. TUNIGUARD_* environment variables, optionally read from a dotenv
//     file (-env, default .env).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the API (default http://127.0.0.1:5000)
//	-d string   data directory (default .tuniguard)
//	-t int      request timeout, seconds
//	-r int      analytics refresh interval, seconds
//	-i int      online status check interval, seconds
//
// # JSON schema
//
// Durations are strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://tuniguard.example",
//	  "request_timeout": "15s",
//	  "analytics_days": 30,
//	  "persist_chat_errors": false,
//	  "log": {"level": "debug", "format": "json", "backend": "zap"},
//	  "export": {"s3_bucket": "reports", "s3_endpoint": "http://localhost:9000"}
//	}
package config
