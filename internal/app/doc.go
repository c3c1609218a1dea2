// Package app is the composition root of hoverdeck.
//
// # Overview
//
// Run loads configuration, opens the log file, builds the admin API adapter
// and the shared state.Store, starts the background pollers and finally hands
// the terminal to the ui package. It blocks until the operator quits or the
// context is cancelled.
//
// # Components
//
//   - app.go: Run and option handling
//   - poller.go: status poller with exponential backoff while the proxy is unreachable
//   - logs_poller.go: logs poller, enabled only while the proxy is online
//   - controller.go: operator commands (refresh, clear cache, shutdown, logs filter)
//   - logging.go: logrus setup writing to the configured log file
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read config.toml
//	       ├─────> hoverfly.NewRequest() Admin API adapter
//	       ├─────> state.NewStore()     Slices + subscriptions
//	       ├─────> StartPoller()        Status, main info, state
//	       ├─────> LogsPoller.Run()     Logs while online
//	       └─────> ui.Run()             TUI (blocks)
//
// # Polling Behavior
//
// The status poller fetches GET /hoverfly/mode on every tick. A successful
// status poll also refreshes main info and the state store. Failures double
// the wait up to 30 seconds; the first success resets it.
//
// The logs poller watches the store. When the status slice settles on success
// it fetches logs immediately and then every logs_interval. When the status
// slice settles on error its ticker is stopped. Changing the from filter
// refetches at once while polling is enabled.
//
// # Error Handling
//
// Configuration and log file errors are fatal and returned from Run. Request
// failures are recorded in the store as error states, logged at warn and never
// retried outside of the regular polling schedule.
package app
