// Package hotload maps watched files to reload watchers and dispatches a
// callback per watcher whenever a file is rewritten, or deleted and later
// recreated. A single background goroutine waits on the notification
// source, coalesces raw events per handle, and fires callbacks under the
// engine lock in registration order.
//
// Reload callbacks run with the engine lock held: a callback that calls
// back into Register or Unregister deadlocks. Keep callbacks short and
// non-reentrant.
package hotload
