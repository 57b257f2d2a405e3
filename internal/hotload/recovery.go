package hotload

import "hotwatch/internal/fsutil"

// sweep re-arms every target whose watch is currently absent and whose
// file exists again. Runs once per loop iteration.
func (engine *Engine) sweep() {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	for _, entry := range engine.entries {
		if entry.handle != 0 {
			continue
		}
		if !fsutil.IsRegularFile(entry.target) {
			continue
		}
		engine.armLocked(entry)
	}
}

// rewatchLocked handles an invalidated watch: drop the stale handle, then
// either re-arm immediately or leave the target unwatched for the next
// sweep.
func (engine *Engine) rewatchLocked(entry *targetEntry) {
	if entry.handle != 0 {
		engine.src.RemoveWatch(entry.handle)
		delete(engine.handles, entry.handle)
		entry.handle = 0
		engine.metrics.SetWatchesActive(len(engine.handles))
	}

	if !fsutil.IsRegularFile(entry.target) {
		engine.logDebug("watch invalidated, awaiting recreation", map[string]string{
			"target": entry.target,
		})
		return
	}
	engine.armLocked(entry)
}

// armLocked creates a fresh handle for entry. Watchers fire before the new
// handle is recorded so they observe the recreated content as a reload.
func (engine *Engine) armLocked(entry *targetEntry) {
	handle, err := engine.src.CreateWatch(entry.target)
	if err != nil {
		engine.logDebug("rewatch attempt failed", map[string]string{
			"target": entry.target,
			"error":  err.Error(),
		})
		return
	}

	engine.fireLocked(entry, ReasonRecovered)

	entry.handle = handle
	engine.handles[handle] = entry.target
	engine.metrics.SetWatchesActive(len(engine.handles))
	engine.metrics.IncRecoveries()
	engine.logDebug("watch re-established", map[string]string{
		"target": entry.target,
	})
}
