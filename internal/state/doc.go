// Package state holds the client-side state of the console.
//
// # Overview
//
// Each admin resource gets a Slice: one asynchronous fetch plus its result.
// The Store composes the slices into one state tree and hands every slice
// the same hoverfly.Facade, which is passed to NewStore explicitly.
//
//	Store
//	├── Main         MainInfo        polled
//	├── Status       ModeView        polled, drives Snapshot.Online
//	├── ServerState  StateView       polled
//	├── Logs         LogsResponse    polled while online, params LogsQuery
//	├── Cache        DeleteCache     one-shot command
//	└── Shutdown     struct{}        one-shot command
//
// # Resource
//
// Resource[T] is a tagged variant with exactly one active state:
//
//	idle ──Trigger──> loading ──> success(value)
//	                          └──> error(err)
//
// A new Trigger moves the slice back to loading whatever the previous
// terminal state was. Settled keeps the last terminal state so callers can
// tell "online but refreshing" from "never reached".
//
// # Triggers
//
// Trigger switches the slice to loading before it returns, then runs the
// facade call on its own goroutine. There is no retry and no backoff: one
// attempt per trigger, and failures are stored as the error state instead
// of being returned. Triggers are not deduplicated.
//
// # Overlapping requests
//
// Each trigger is tagged with a per-slice sequence number. Under the default
// LatestIssued policy a completion whose number is not the latest is dropped,
// so a slow old logs query can never replace the result of the filter the
// operator just picked. CompletionOrder applies completions as they arrive
// (last write wins) and exists for callers that want that behavior.
// Superseded requests are not cancelled.
//
// # Notifications
//
// Subscribe returns a channel with a buffer of one. Every transition does a
// non-blocking send, so signals coalesce; readers call Snapshot after a
// signal to get the current tree. Snapshot copies log and state collections.
package state
