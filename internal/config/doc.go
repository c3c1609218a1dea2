// Package config loads the console configuration file.
//
// # Discovery
//
//  1. An explicit path (the -config flag) wins
//  2. Otherwise ~/.config/hoverdeck/config.toml
//  3. A missing file is not an error; defaults are used
//  4. Empty fields fall back to their defaults
//
// # Format
//
//	admin_bind    = "127.0.0.1:8888"   # host:port or full URL of the admin API
//	poll_interval = "2s"               # status, main info and state refresh
//	logs_interval = "10s"              # logs refresh while the proxy is online
//	log_file      = "~/.local/state/hoverdeck/hoverdeck.log"
//	log_level     = "info"             # any logrus level
//
// Intervals are Go durations and must be at least 250ms. Paths get tilde
// expansion and are made absolute.
//
// Load returns an error for unreadable files, invalid TOML, and values that
// do not parse. The returned Config is a plain value with no global state.
package config
