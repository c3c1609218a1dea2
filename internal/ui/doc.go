// Package ui implements the hoverdeck terminal interface with Bubble Tea.
//
// # Views
//
//   - Overview: proxy configuration from GET /hoverfly and per-mode request counters
//   - Logs: entries from GET /logs with an optional from filter and follow mode
//   - State: the proxy's key/value state store
//
// # Data Flow
//
// The model subscribes to state.Store on construction. Each store signal
// becomes a storeChangedMsg, the model takes a fresh Snapshot and re-arms the
// wait. Rendering never touches the network; every operator command goes
// through the Commands interface, which returns at once and reports back via
// the store.
//
// A one second tick keeps the "updated N ago" label current.
//
// # Destructive Commands
//
// Clearing the cache and shutting the proxy down ask for confirmation in a
// modal unless prefs.Confirm is false.
//
// # Themes
//
// Dracula and Slate are built in. T cycles them and the choice is
// written back to the preferences file.
package ui
