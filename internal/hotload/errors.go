package hotload

import "errors"

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotInitialized      = errors.New("engine not initialized")
	ErrAlreadyRunning      = errors.New("engine already running")
	ErrDuplicateWatcher    = errors.New("watcher already registered")
	ErrNotFound            = errors.New("watcher not registered")
	ErrInvalidPath         = errors.New("invalid path")
	ErrWatchCreationFailed = errors.New("watch creation failed")
)
