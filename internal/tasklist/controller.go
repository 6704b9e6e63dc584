// Package tasklist binds the task store to a list screen: a date-sorted
// view that can be narrowed to one category, with row selection and
// deletion.
package tasklist

import (
	"fmt"
	"sync"
	"time"

	"taskapp/internal/storage"
)

// RowDateLayout is how a row shows its task date.
const RowDateLayout = "2006-01-02 15:04"

type State int

const (
	Sorted State = iota
	Filtered
)

func (s State) String() string {
	if s == Filtered {
		return "filtered"
	}
	return "sorted"
}

// Canceler removes the pending reminder for a task. LogPending reports
// what is still pending without blocking.
type Canceler interface {
	Cancel(taskID int)
	LogPending()
}

type Row struct {
	Title string
	Date  string
}

type Controller struct {
	store     *storage.Store
	reminders Canceler
	now       func() time.Time

	mu          sync.Mutex
	view        *storage.Results
	unsubscribe func()
	state       State
	query       string
	selected    int
}

func New(store *storage.Store, reminders Canceler) *Controller {
	return &Controller{
		store:     store,
		reminders: reminders,
		now:       time.Now,
		selected:  -1,
	}
}

// Load binds the full date-ascending view. It is called whenever the list
// becomes active again and always drops any search.
func (c *Controller) Load() error {
	view, err := c.store.Sorted(storage.FieldDate, true)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	c.bind(view, Sorted, "")
	return nil
}

// Search rebinds to the tasks whose category equals text exactly. Empty
// text goes back to the sorted view.
func (c *Controller) Search(text string) error {
	if text == "" {
		return c.Load()
	}
	view, err := c.store.Filtered(storage.FieldCategory, text)
	if err != nil {
		return fmt.Errorf("search %q: %w", text, err)
	}
	c.bind(view, Filtered, text)
	return nil
}

func (c *Controller) bind(view *storage.Results, state State, query string) {
	c.mu.Lock()
	old, oldUnsub := c.view, c.unsubscribe
	c.view = view
	c.state = state
	c.query = query
	c.selected = -1
	if view.Len() > 0 {
		c.selected = 0
	}
	c.mu.Unlock()

	if oldUnsub != nil {
		oldUnsub()
	}
	if old != nil {
		old.Close()
	}
	unsub := view.Subscribe(c.clampSelection)

	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()
}

// clampSelection keeps the selection on a resolvable row after the view
// changes underneath it.
func (c *Controller) clampSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = clamp(c.selected, c.lenLocked())
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query is the active search text, empty in the sorted state.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lenLocked()
}

func (c *Controller) lenLocked() int {
	if c.view == nil {
		return 0
	}
	return c.view.Len()
}

func (c *Controller) task(i int) (storage.Task, bool) {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()
	if view == nil {
		return storage.Task{}, false
	}
	return view.At(i)
}

func (c *Controller) Row(i int) (Row, bool) {
	t, ok := c.task(i)
	if !ok {
		return Row{}, false
	}
	return Row{Title: t.Title, Date: t.Date.Format(RowDateLayout)}, true
}

func (c *Controller) Tasks() []storage.Task {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()
	if view == nil {
		return nil
	}
	return view.Tasks()
}

// Select makes row i current and returns its task for the editor. It
// reports false when the row does not resolve, in which case the
// selection is left unchanged.
func (c *Controller) Select(i int) (storage.Task, bool) {
	t, ok := c.task(i)
	if !ok {
		return storage.Task{}, false
	}
	c.mu.Lock()
	c.selected = i
	c.mu.Unlock()
	return t, true
}

// Selected is the current row index, -1 when nothing is selectable.
func (c *Controller) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) MoveSelection(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.lenLocked()
	if n == 0 {
		c.selected = -1
		return c.selected
	}
	c.selected = clamp(c.selected+delta, n)
	return c.selected
}

// DeleteRow cancels the reminder of the task on row i and deletes the task.
// The bound view drops the row once the delete commits.
func (c *Controller) DeleteRow(i int) (storage.Task, error) {
	t, ok := c.task(i)
	if !ok {
		return storage.Task{}, fmt.Errorf("delete row %d: no such row", i)
	}
	if err := c.Delete(t); err != nil {
		return t, fmt.Errorf("delete row %d: %w", i, err)
	}
	return t, nil
}

// Delete cancels t's reminder and removes t from the store. The pending
// reminders are logged once the delete has committed.
func (c *Controller) Delete(t storage.Task) error {
	c.reminders.Cancel(t.ID)
	if err := c.store.Delete(t); err != nil {
		return err
	}
	c.reminders.LogPending()
	return nil
}

// NewTask prepares an unsaved task with the next free ID and the current
// time. The editor inserts it on save.
func (c *Controller) NewTask() (storage.Task, error) {
	id, err := c.store.NextID()
	if err != nil {
		return storage.Task{}, err
	}
	return storage.Task{ID: id, Date: c.now()}, nil
}

// Err reports a failed refresh of the bound view.
func (c *Controller) Err() error {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()
	if view == nil {
		return nil
	}
	return view.Err()
}

func (c *Controller) Close() {
	c.mu.Lock()
	view, unsub := c.view, c.unsubscribe
	c.view, c.unsubscribe = nil, nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	if view != nil {
		view.Close()
	}
}

func clamp(cur, n int) int {
	if n <= 0 {
		return -1
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
