package identity

import "sync"

// Watcher fans session events out to per-user subscribers.
type Watcher struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func(Event)
}

func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[string]map[uint64]func(Event))}
}

func (w *Watcher) Subscribe(userID string, fn func(Event)) func() {
	w.mu.Lock()
	w.next++
	id := w.next
	if w.subs[userID] == nil {
		w.subs[userID] = make(map[uint64]func(Event))
	}
	w.subs[userID][id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs[userID], id)
			if len(w.subs[userID]) == 0 {
				delete(w.subs, userID)
			}
		})
	}
}

// Publish calls every subscriber of ev.UserID synchronously, outside the lock.
func (w *Watcher) Publish(ev Event) {
	w.mu.RLock()
	fns := make([]func(Event), 0, len(w.subs[ev.UserID]))
	for _, fn := range w.subs[ev.UserID] {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (w *Watcher) Subscribers(userID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subs[userID])
}
