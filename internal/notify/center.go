// Package notify keeps local reminders for tasks and fires them when due.
package notify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Request is one pending reminder, addressed by a caller-chosen ID.
type Request struct {
	ID     string    `yaml:"id"`
	Title  string    `yaml:"title"`
	Body   string    `yaml:"body"`
	FireAt time.Time `yaml:"fire_at"`
}

type pendingFile struct {
	Requests []Request `yaml:"requests"`
}

// Center is a file-backed set of pending reminder requests. It is safe for
// concurrent use.
type Center struct {
	path string

	mu       sync.Mutex
	requests map[string]Request
}

func Open(path string) (*Center, error) {
	if path == "" {
		return nil, errors.New("reminders path is empty")
	}
	c := &Center{path: path, requests: map[string]Request{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reminders: %w", err)
	}
	var f pendingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reminders: %w", err)
	}
	for _, r := range f.Requests {
		c.requests[r.ID] = r
	}
	return c, nil
}

// Add registers r, replacing any request with the same ID.
func (c *Center) Add(r Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[r.ID] = r
	return c.save()
}

// RemovePending drops the requests with the given IDs. Unknown IDs are ignored.
func (c *Center) RemovePending(ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, id := range ids {
		if _, ok := c.requests[id]; ok {
			delete(c.requests, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.save()
}

// Pending returns the pending requests ordered by fire time.
func (c *Center) Pending() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sorted()
}

// PendingRequests hands the pending requests to fn on another goroutine.
func (c *Center) PendingRequests(fn func([]Request)) {
	go fn(c.Pending())
}

// Deliver removes and returns every request due at or before now.
func (c *Center) Deliver(now time.Time) ([]Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var due []Request
	for _, r := range c.sorted() {
		if r.FireAt.After(now) {
			break
		}
		due = append(due, r)
		delete(c.requests, r.ID)
	}
	if len(due) == 0 {
		return nil, nil
	}
	return due, c.save()
}

func (c *Center) sorted() []Request {
	out := make([]Request, 0, len(c.requests))
	for _, r := range c.requests {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

func (c *Center) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(pendingFile{Requests: c.sorted()})
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write reminders: %w", err)
	}
	return os.Rename(tmp, c.path)
}
