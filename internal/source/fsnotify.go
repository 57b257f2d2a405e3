package source

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Notify adapts fsnotify to the Source contract. fsnotify keys watches by
// path; Notify allocates an integer Handle per watched path and translates
// path-keyed events back to handle-keyed raw events.
type Notify struct {
	watcher    *fsnotify.Watcher
	mutex      sync.Mutex
	nextHandle Handle
	byPath     map[string]Handle
	byHandle   map[Handle]string
	pending    []RawEvent
	closed     bool
}

var _ Source = (*Notify)(nil)

func NewNotify() (*Notify, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Notify{
		watcher:  watcher,
		byPath:   make(map[string]Handle),
		byHandle: make(map[Handle]string),
	}, nil
}

func (notify *Notify) CreateWatch(path string) (Handle, error) {
	if notify == nil {
		return 0, errors.New("source is nil")
	}

	notify.mutex.Lock()
	if notify.closed {
		notify.mutex.Unlock()
		return 0, errors.New("source is closed")
	}
	// Drop any stale mapping left behind by an invalidated watch.
	if stale, ok := notify.byPath[path]; ok {
		delete(notify.byHandle, stale)
		delete(notify.byPath, path)
	}
	notify.mutex.Unlock()

	if err := notify.watcher.Add(path); err != nil {
		return 0, err
	}

	notify.mutex.Lock()
	notify.nextHandle++
	handle := notify.nextHandle
	notify.byPath[path] = handle
	notify.byHandle[handle] = path
	notify.mutex.Unlock()
	return handle, nil
}

func (notify *Notify) RemoveWatch(handle Handle) {
	if notify == nil {
		return
	}

	notify.mutex.Lock()
	path, ok := notify.byHandle[handle]
	if ok {
		delete(notify.byHandle, handle)
		delete(notify.byPath, path)
	}
	closed := notify.closed
	notify.mutex.Unlock()

	if !ok || closed {
		return
	}
	// Removing a watch the kernel already dropped reports an error; the
	// contract treats that as a no-op.
	_ = notify.watcher.Remove(path)
}

func (notify *Notify) Wait(timeout time.Duration) (WaitResult, error) {
	if notify == nil {
		return TimedOut, errors.New("source is nil")
	}

	notify.mutex.Lock()
	buffered := len(notify.pending) > 0
	notify.mutex.Unlock()
	if buffered {
		return Ready, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case event, ok := <-notify.watcher.Events:
			if !ok {
				return TimedOut, errors.New("event channel closed")
			}
			if notify.buffer(event) {
				return Ready, nil
			}
		case err, ok := <-notify.watcher.Errors:
			if !ok {
				return TimedOut, errors.New("error channel closed")
			}
			return TimedOut, err
		case <-timer.C:
			return TimedOut, nil
		}
	}
}

func (notify *Notify) ReadEvents() []RawEvent {
	if notify == nil {
		return nil
	}

	notify.mutex.Lock()
	drained := notify.pending
	notify.pending = nil
	notify.mutex.Unlock()

	// Pick up anything that arrived since Wait returned so one wake-up
	// sees the whole burst.
	for {
		select {
		case event, ok := <-notify.watcher.Events:
			if !ok {
				return drained
			}
			if raw, ok := notify.translate(event); ok {
				drained = append(drained, raw)
			}
		default:
			return drained
		}
	}
}

func (notify *Notify) Close() error {
	if notify == nil {
		return nil
	}

	notify.mutex.Lock()
	if notify.closed {
		notify.mutex.Unlock()
		return nil
	}
	notify.closed = true
	notify.pending = nil
	notify.byPath = make(map[string]Handle)
	notify.byHandle = make(map[Handle]string)
	notify.mutex.Unlock()

	return notify.watcher.Close()
}

func (notify *Notify) buffer(event fsnotify.Event) bool {
	raw, ok := notify.translate(event)
	if !ok {
		return false
	}
	notify.mutex.Lock()
	notify.pending = append(notify.pending, raw)
	notify.mutex.Unlock()
	return true
}

func (notify *Notify) translate(event fsnotify.Event) (RawEvent, bool) {
	mask := maskForOp(event.Op)
	if mask == 0 {
		return RawEvent{}, false
	}

	notify.mutex.Lock()
	handle, ok := notify.byPath[event.Name]
	notify.mutex.Unlock()
	if !ok {
		return RawEvent{}, false
	}
	return RawEvent{Handle: handle, Mask: mask}, true
}

// maskForOp maps fsnotify operations onto the two flags the engine cares
// about. Rename is treated the same as removal: the watch follows the
// inode, so the original path is no longer covered.
func maskForOp(op fsnotify.Op) Mask {
	var mask Mask
	if op.Has(fsnotify.Write) || op.Has(fsnotify.Create) {
		mask |= FlagWrite
	}
	if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		mask |= FlagInvalidated
	}
	return mask
}
