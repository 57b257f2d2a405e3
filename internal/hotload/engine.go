package hotload

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hotwatch/internal/event"
	"hotwatch/internal/logging"
	"hotwatch/internal/metrics"
	"hotwatch/internal/source"
)

const defaultWaitTimeout = time.Second

type engineState int

const (
	stateUninitialized engineState = iota
	stateInitialized
	stateRunning
	stateStopped
)

func (state engineState) String() string {
	switch state {
	case stateInitialized:
		return "initialized"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// Options controls engine construction. All fields are optional except
// that a nil NewSource defaults to the fsnotify-backed source.
type Options struct {
	Logger      *logging.Logger
	Metrics     *metrics.Set
	Bus         *event.Bus[ReloadEvent]
	WaitTimeout time.Duration
	NewSource   func() (source.Source, error)
}

type registration struct {
	watcher   Watcher
	ownership Ownership
}

// targetEntry holds every registration bound to one canonical file plus
// the single live handle shared by all of them. handle 0 means unwatched:
// the file is currently missing and the target awaits recovery.
type targetEntry struct {
	target   string
	handle   source.Handle
	watchers []registration
}

// Engine is the registry-and-dispatch core. One mutex protects the
// registry, the handle index, and the source handles; the event loop's
// dispatch step acquires it too, so successful registrations are visible
// to the next iteration.
type Engine struct {
	mutex   sync.Mutex
	state   engineState
	entries map[string]*targetEntry
	handles map[source.Handle]string
	src     source.Source

	running atomic.Bool
	worker  sync.WaitGroup

	logger      *logging.Logger
	metrics     *metrics.Set
	bus         *event.Bus[ReloadEvent]
	waitTimeout time.Duration
	newSource   func() (source.Source, error)
}

func New(options Options) *Engine {
	waitTimeout := options.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}
	newSource := options.NewSource
	if newSource == nil {
		newSource = func() (source.Source, error) {
			return source.NewNotify()
		}
	}
	logger := options.Logger
	if logger != nil {
		logger = logger.With(map[string]string{"hotwatch.category": "engine"})
	}
	return &Engine{
		entries:     make(map[string]*targetEntry),
		handles:     make(map[source.Handle]string),
		logger:      logger,
		metrics:     options.Metrics,
		bus:         options.Bus,
		waitTimeout: waitTimeout,
		newSource:   newSource,
	}
}

// Init prepares the notification source. It is idempotent while the engine
// is initialized or running, and re-arms an engine that was stopped (by
// Stop or by a fail-stop).
func (engine *Engine) Init() error {
	if engine == nil {
		return ErrInvalidArgument
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	switch engine.state {
	case stateInitialized, stateRunning:
		return nil
	}

	src, err := engine.newSource()
	if err != nil {
		return fmt.Errorf("initialize notification source: %w", err)
	}
	engine.src = src
	engine.state = stateInitialized
	engine.logDebug("engine initialized", nil)
	return nil
}

// Run starts the background worker.
func (engine *Engine) Run() error {
	if engine == nil {
		return ErrInvalidArgument
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	switch engine.state {
	case stateRunning:
		return ErrAlreadyRunning
	case stateInitialized:
	default:
		return ErrNotInitialized
	}

	engine.state = stateRunning
	engine.running.Store(true)
	engine.worker.Add(1)
	go engine.loop(engine.src)
	engine.logDebug("engine running", nil)
	return nil
}

// Stop halts the worker, unregisters everything, and releases the source.
// It is idempotent and valid from any state. Must not be called from a
// reload callback.
func (engine *Engine) Stop() {
	if engine == nil {
		return
	}

	engine.running.Store(false)
	engine.worker.Wait()

	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.teardownLocked()
}

// Stats reports a snapshot of the engine for health reporting.
type Stats struct {
	State         string `json:"state"`
	Targets       int    `json:"targets"`
	Watchers      int    `json:"watchers"`
	ActiveHandles int    `json:"active_handles"`
}

func (engine *Engine) Stats() Stats {
	if engine == nil {
		return Stats{State: stateUninitialized.String()}
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	watchers := 0
	for _, entry := range engine.entries {
		watchers += len(entry.watchers)
	}
	return Stats{
		State:         engine.state.String(),
		Targets:       len(engine.entries),
		Watchers:      watchers,
		ActiveHandles: len(engine.handles),
	}
}

func (engine *Engine) teardownLocked() {
	if engine.state == stateStopped {
		return
	}
	engine.unregisterAllLocked()
	if engine.src != nil {
		_ = engine.src.Close()
		engine.src = nil
	}
	engine.state = stateStopped
	engine.logDebug("engine stopped", nil)
}

func (engine *Engine) acceptsOperationsLocked() bool {
	return engine.state == stateInitialized || engine.state == stateRunning
}

func (engine *Engine) logDebug(message string, fields map[string]string) {
	if engine == nil || engine.logger == nil {
		return
	}
	engine.logger.Debug(message, fields)
}

func (engine *Engine) logWarn(message string, fields map[string]string) {
	if engine == nil || engine.logger == nil {
		return
	}
	engine.logger.Warn(message, fields)
}

func (engine *Engine) logError(message string, fields map[string]string) {
	if engine == nil || engine.logger == nil {
		return
	}
	engine.logger.Error(message, fields)
}
