package tasklist

import (
	"fmt"
	"time"

	"taskapp/internal/storage"
)

// Reminders is what the editor needs from the reminder scheduler.
type Reminders interface {
	Schedule(taskID int, title, body string, at time.Time) error
}

// Editor commits a new or edited task and keeps its reminder in step.
type Editor struct {
	store     *storage.Store
	reminders Reminders
}

func NewEditor(store *storage.Store, reminders Reminders) *Editor {
	return &Editor{store: store, reminders: reminders}
}

// Save writes t and then (re)schedules its reminder at t.Date. The write
// is authoritative; a reminder failure is returned after the task is saved.
func (e *Editor) Save(t storage.Task) error {
	if err := e.store.InsertOrUpdate(t); err != nil {
		return fmt.Errorf("save task %d: %w", t.ID, err)
	}
	if e.reminders == nil {
		return nil
	}
	if err := e.reminders.Schedule(t.ID, t.Title, t.Contents, t.Date); err != nil {
		return fmt.Errorf("schedule reminder %d: %w", t.ID, err)
	}
	return nil
}
