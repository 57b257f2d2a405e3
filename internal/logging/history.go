package logging

import (
	"sync"

	"hotwatch/internal/buffer"
)

// History retains the most recent log entries for inspection over the API
// or in tests.
type History struct {
	mutex   sync.Mutex
	entries *buffer.Ring[Entry]
}

func NewHistory(size int) *History {
	return &History{
		entries: buffer.NewRing[Entry](size),
	}
}

func (history *History) Add(entry Entry) {
	if history == nil {
		return
	}
	history.mutex.Lock()
	defer history.mutex.Unlock()
	history.entries.Add(entry)
}

func (history *History) List() []Entry {
	if history == nil {
		return nil
	}
	history.mutex.Lock()
	defer history.mutex.Unlock()
	return history.entries.List()
}
