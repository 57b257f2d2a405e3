package hotload

import (
	"fmt"
	"io"

	"hotwatch/internal/fsutil"
)

// Register binds watcher to its target under the given ownership. The
// first watcher for a target creates the low-level watch; later watchers
// share it. Insertion order is preserved and determines dispatch order.
func (engine *Engine) Register(watcher Watcher, ownership Ownership) error {
	if engine == nil || watcher == nil {
		return fmt.Errorf("%w: nil watcher", ErrInvalidArgument)
	}

	target, err := fsutil.Canonicalize(watcher.Target())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if !engine.acceptsOperationsLocked() {
		return ErrNotInitialized
	}

	if entry := engine.entries[target]; entry != nil {
		for _, existing := range entry.watchers {
			if existing.watcher == watcher {
				return fmt.Errorf("%w: %s", ErrDuplicateWatcher, target)
			}
		}
		entry.watchers = append(entry.watchers, registration{watcher: watcher, ownership: ownership})
		engine.logDebug("watcher added to existing target", map[string]string{
			"target":   target,
			"watchers": fmt.Sprintf("%d", len(entry.watchers)),
		})
		return nil
	}

	handle, err := engine.src.CreateWatch(target)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWatchCreationFailed, target, err)
	}

	engine.entries[target] = &targetEntry{
		target:   target,
		handle:   handle,
		watchers: []registration{{watcher: watcher, ownership: ownership}},
	}
	engine.handles[handle] = target
	engine.metrics.SetWatchesActive(len(engine.handles))
	engine.logDebug("watch created", map[string]string{
		"target":    target,
		"ownership": ownership.String(),
	})
	return nil
}

// Unregister removes one watcher, identified by interface value. The last
// watcher of a target takes the low-level watch and the registry entry
// with it.
func (engine *Engine) Unregister(watcher Watcher) error {
	if engine == nil || watcher == nil {
		return fmt.Errorf("%w: nil watcher", ErrInvalidArgument)
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if !engine.acceptsOperationsLocked() {
		return ErrNotInitialized
	}

	for _, entry := range engine.entries {
		for index, existing := range entry.watchers {
			if existing.watcher == watcher {
				engine.removeRegistrationLocked(entry, index)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %q", ErrNotFound, watcher.Target())
}

// UnregisterTarget removes every watcher bound to path, honoring each
// registration's ownership mode.
func (engine *Engine) UnregisterTarget(path string) error {
	if engine == nil || path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}

	target, err := fsutil.Canonicalize(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if !engine.acceptsOperationsLocked() {
		return ErrNotInitialized
	}

	entry := engine.entries[target]
	if entry == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	engine.clearTargetLocked(entry)
	return nil
}

// UnregisterAll tears down every tracked target. Idempotent; used during
// shutdown.
func (engine *Engine) UnregisterAll() {
	if engine == nil {
		return
	}
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.unregisterAllLocked()
}

func (engine *Engine) unregisterAllLocked() {
	for _, entry := range engine.entries {
		engine.clearTargetLocked(entry)
	}
}

func (engine *Engine) clearTargetLocked(entry *targetEntry) {
	for _, existing := range entry.watchers {
		engine.destroyIfOwnedLocked(existing)
	}
	entry.watchers = nil
	engine.dropTargetLocked(entry)
}

func (engine *Engine) removeRegistrationLocked(entry *targetEntry, index int) {
	removed := entry.watchers[index]
	entry.watchers = append(entry.watchers[:index], entry.watchers[index+1:]...)
	engine.destroyIfOwnedLocked(removed)
	if len(entry.watchers) == 0 {
		engine.dropTargetLocked(entry)
	}
}

// destroyIfOwnedLocked closes a registry-owned watcher on its way out.
// Caller-owned watchers remain valid after unregistration.
func (engine *Engine) destroyIfOwnedLocked(removed registration) {
	if removed.ownership != RegistryOwned {
		return
	}
	closer, ok := removed.watcher.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		engine.logWarn("watcher close failed", map[string]string{
			"error": err.Error(),
		})
	}
}

func (engine *Engine) dropTargetLocked(entry *targetEntry) {
	if entry.handle != 0 {
		if engine.src != nil {
			engine.src.RemoveWatch(entry.handle)
		}
		delete(engine.handles, entry.handle)
		entry.handle = 0
	}
	delete(engine.entries, entry.target)
	engine.metrics.SetWatchesActive(len(engine.handles))
	engine.logDebug("watch removed", map[string]string{
		"target": entry.target,
	})
}
