package hotload

import (
	"errors"
	"time"

	"hotwatch/internal/source"
)

// loop is the engine's single background worker. Each iteration sweeps for
// recoverable targets, blocks on the source with a bounded timeout so the
// running flag is re-checked even when nothing changes, then drains and
// coalesces raw events and dispatches at most once per handle.
func (engine *Engine) loop(src source.Source) {
	defer engine.worker.Done()

	for engine.running.Load() {
		engine.sweep()

		result, err := src.Wait(engine.waitTimeout)
		if err != nil {
			if errors.Is(err, source.ErrInterrupted) {
				continue
			}
			engine.failStop(err)
			return
		}
		if result != source.Ready {
			continue
		}

		raw := src.ReadEvents()
		if len(raw) == 0 {
			continue
		}
		masks := make(map[source.Handle]source.Mask, len(raw))
		for _, event := range raw {
			masks[event.Handle] |= event.Mask
		}
		engine.metrics.AddRawEvents(len(raw))
		engine.metrics.IncWakeups()
		engine.dispatch(masks)
	}
}

func (engine *Engine) dispatch(masks map[source.Handle]source.Mask) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	for handle, mask := range masks {
		target, ok := engine.handles[handle]
		if !ok {
			// Unregistered between the event and this dispatch.
			continue
		}
		entry := engine.entries[target]
		if entry == nil {
			continue
		}

		if mask&source.FlagInvalidated != 0 {
			engine.rewatchLocked(entry)
			continue
		}
		if mask&source.FlagWrite != 0 {
			engine.fireLocked(entry, ReasonWrite)
		}
	}
}

// fireLocked invokes every watcher of entry in registration order, then
// publishes one reload event for the target.
func (engine *Engine) fireLocked(entry *targetEntry, reason ReloadReason) {
	for _, bound := range entry.watchers {
		bound.watcher.OnReload()
	}
	engine.metrics.IncReloads(string(reason), len(entry.watchers))
	engine.bus.Publish(ReloadEvent{
		Target:    entry.target,
		Reason:    reason,
		Watchers:  len(entry.watchers),
		Timestamp: time.Now().UTC(),
	})
	engine.logDebug("reload dispatched", map[string]string{
		"target": entry.target,
		"reason": string(reason),
	})
}

// failStop handles an unrecoverable source failure: the worker halts, all
// watches are torn down, and the engine goes idle until Init/Run are
// called again. No notifications fire after this point.
func (engine *Engine) failStop(cause error) {
	engine.metrics.IncLoopFailures()
	engine.logError("notification source failed, stopping", map[string]string{
		"error": cause.Error(),
	})
	engine.running.Store(false)

	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.teardownLocked()
}
