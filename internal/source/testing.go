package source

import (
	"errors"
	"sync"
	"time"
)

// Fake is a scriptable in-memory Source for engine tests. Tests create
// watches through the engine as usual, then push raw events with Emit and
// assert on dispatch behavior. Create calls and watch removals are counted
// so tests can verify handle reuse and teardown.
type Fake struct {
	mutex       sync.Mutex
	nextHandle  Handle
	watched     map[Handle]string
	byPath      map[string]Handle
	pending     []RawEvent
	wake        chan struct{}
	createCalls map[string]int
	failCreate  map[string]error
	nextWaitErr error
	removed     []Handle
	closed      bool
}

var _ Source = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		watched:     make(map[Handle]string),
		byPath:      make(map[string]Handle),
		wake:        make(chan struct{}, 1),
		createCalls: make(map[string]int),
		failCreate:  make(map[string]error),
	}
}

func (fake *Fake) CreateWatch(path string) (Handle, error) {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	fake.createCalls[path]++
	if fake.closed {
		return 0, errors.New("source is closed")
	}
	if err := fake.failCreate[path]; err != nil {
		return 0, err
	}

	fake.nextHandle++
	handle := fake.nextHandle
	fake.watched[handle] = path
	fake.byPath[path] = handle
	return handle, nil
}

func (fake *Fake) RemoveWatch(handle Handle) {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	fake.removed = append(fake.removed, handle)
	if path, ok := fake.watched[handle]; ok {
		delete(fake.watched, handle)
		if fake.byPath[path] == handle {
			delete(fake.byPath, path)
		}
	}
}

func (fake *Fake) Wait(timeout time.Duration) (WaitResult, error) {
	fake.mutex.Lock()
	if err := fake.nextWaitErr; err != nil {
		fake.nextWaitErr = nil
		fake.mutex.Unlock()
		return TimedOut, err
	}
	if len(fake.pending) > 0 {
		fake.mutex.Unlock()
		return Ready, nil
	}
	wake := fake.wake
	fake.mutex.Unlock()

	select {
	case <-wake:
	case <-time.After(timeout):
		return TimedOut, nil
	}

	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	if err := fake.nextWaitErr; err != nil {
		fake.nextWaitErr = nil
		return TimedOut, err
	}
	if len(fake.pending) > 0 {
		return Ready, nil
	}
	return TimedOut, nil
}

func (fake *Fake) ReadEvents() []RawEvent {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	drained := fake.pending
	fake.pending = nil
	return drained
}

func (fake *Fake) Close() error {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	fake.closed = true
	fake.pending = nil
	return nil
}

// Emit queues raw events and wakes a blocked Wait.
func (fake *Fake) Emit(events ...RawEvent) {
	fake.mutex.Lock()
	fake.pending = append(fake.pending, events...)
	fake.mutex.Unlock()
	fake.signal()
}

// FailNextWait makes the next Wait call return err. Used to exercise the
// engine's fail-stop path.
func (fake *Fake) FailNextWait(err error) {
	fake.mutex.Lock()
	fake.nextWaitErr = err
	fake.mutex.Unlock()
	fake.signal()
}

// FailCreate makes CreateWatch for path return err until cleared with a
// nil err.
func (fake *Fake) FailCreate(path string, err error) {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	if err == nil {
		delete(fake.failCreate, path)
		return
	}
	fake.failCreate[path] = err
}

// HandleFor returns the live handle for path, or 0.
func (fake *Fake) HandleFor(path string) Handle {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.byPath[path]
}

// CreateCalls reports how many times CreateWatch was invoked for path,
// including failed attempts.
func (fake *Fake) CreateCalls(path string) int {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.createCalls[path]
}

// Removed returns the handles passed to RemoveWatch, in order.
func (fake *Fake) Removed() []Handle {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	out := make([]Handle, len(fake.removed))
	copy(out, fake.removed)
	return out
}

// WatchedCount reports the number of live watches.
func (fake *Fake) WatchedCount() int {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return len(fake.watched)
}

func (fake *Fake) Closed() bool {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.closed
}

func (fake *Fake) signal() {
	select {
	case fake.wake <- struct{}{}:
	default:
	}
}
