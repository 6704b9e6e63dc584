package storage

import (
	"fmt"
	"sync"
)

// Results is a live view over the store. It is refreshed after every
// committed mutation, so reads always reflect the latest write.
type Results struct {
	store *Store
	query Query

	mu        sync.RWMutex
	tasks     []Task
	err       error
	closed    bool
	listeners map[int]func()
	nextID    int
}

func (r *Results) Query() Query {
	return r.query
}

func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *Results) At(i int) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.tasks) {
		return Task{}, false
	}
	return r.tasks[i], true
}

func (r *Results) Tasks() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Err reports the last refresh failure, if any. The view keeps its previous
// contents when a refresh fails.
func (r *Results) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Subscribe registers fn to run after each refresh. Listeners run on the
// writing goroutine and must not write to the store or open views.
func (r *Results) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Close detaches the view from the store. It stops refreshing but keeps
// its last contents.
func (r *Results) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.listeners = map[int]func(){}
	r.mu.Unlock()
	r.store.unregister(r)
}

func (r *Results) refresh() {
	tasks, err := r.store.fetch(r.query)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.err = fmt.Errorf("refresh view: %w", err)
	} else {
		r.tasks = tasks
		r.err = nil
	}
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
