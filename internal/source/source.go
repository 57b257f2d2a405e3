// Package source defines the low-level file change notification contract
// consumed by the hotload engine, together with an fsnotify-backed
// implementation. The engine never detects changes itself; it only creates
// and removes watches, blocks in Wait, and drains raw events.
package source

import (
	"errors"
	"time"
)

// Handle identifies one active low-level watch. Handles are never reused
// within a Source lifetime, and 0 is never allocated: the engine uses 0 as
// its "unwatched" sentinel.
type Handle int

// Mask is a bitwise OR of event flags for one handle.
type Mask uint32

const (
	// FlagWrite signals that a write to the watched file completed.
	FlagWrite Mask = 1 << iota
	// FlagInvalidated signals that the watch itself expired, typically
	// because the file was removed or renamed away.
	FlagInvalidated
)

// RawEvent is one undedup'd notification as reported by the source.
// Multiple raw events for the same handle may arrive in one wake-up.
type RawEvent struct {
	Handle Handle
	Mask   Mask
}

type WaitResult int

const (
	TimedOut WaitResult = iota
	Ready
)

// ErrInterrupted marks a transient wait failure; callers should retry.
var ErrInterrupted = errors.New("wait interrupted")

// Source is the notification collaborator contract.
//
// CreateWatch begins monitoring a single file; setup is non-blocking.
// RemoveWatch stops monitoring and is a no-op for unknown or stale handles.
// Wait blocks until at least one event is buffered or the timeout elapses;
// an ErrInterrupted error is transient and retryable, any other error is
// unrecoverable. ReadEvents drains everything currently buffered.
type Source interface {
	CreateWatch(path string) (Handle, error)
	RemoveWatch(handle Handle)
	Wait(timeout time.Duration) (WaitResult, error)
	ReadEvents() []RawEvent
	Close() error
}
