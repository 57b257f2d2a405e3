// Package reload provides ready-made hotload.Watcher implementations for
// common hot-reload consumers.
package reload

// FuncWatcher adapts a plain function to a watcher. Each FuncWatcher is a
// distinct registration identity even when several share a path.
type FuncWatcher struct {
	path string
	fn   func()
}

func Func(path string, fn func()) *FuncWatcher {
	return &FuncWatcher{path: path, fn: fn}
}

func (watcher *FuncWatcher) Target() string {
	return watcher.path
}

func (watcher *FuncWatcher) OnReload() {
	if watcher.fn != nil {
		watcher.fn()
	}
}
