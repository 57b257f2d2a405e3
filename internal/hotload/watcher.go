package hotload

import "time"

// Watcher is a caller-supplied capability bound to one file. Target returns
// the path of interest (relative or symlinked forms are fine; registration
// canonicalizes it). OnReload is invoked once per coalesced change.
//
// Watcher identity is by interface value: two distinct Watcher instances
// bound to the same file are independent registrations and both fire.
type Watcher interface {
	Target() string
	OnReload()
}

// Ownership states who destroys a Watcher on unregistration. A
// registry-owned watcher that implements io.Closer is closed exactly once
// when it leaves the registry; a caller-owned watcher is never touched.
type Ownership int

const (
	CallerOwned Ownership = iota
	RegistryOwned
)

func (ownership Ownership) String() string {
	switch ownership {
	case RegistryOwned:
		return "registry-owned"
	default:
		return "caller-owned"
	}
}

// ReloadReason distinguishes a completed write from a watch re-established
// after the file reappeared.
type ReloadReason string

const (
	ReasonWrite     ReloadReason = "write"
	ReasonRecovered ReloadReason = "recovered"
)

// ReloadEvent is published to the engine's bus after each dispatch.
type ReloadEvent struct {
	Target    string       `json:"target"`
	Reason    ReloadReason `json:"reason"`
	Watchers  int          `json:"watchers"`
	Timestamp time.Time    `json:"timestamp"`
}
