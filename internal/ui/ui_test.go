package ui

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskapp/internal/config"
	"taskapp/internal/notify"
	"taskapp/internal/storage"
	"taskapp/internal/tasklist"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type harness struct {
	store     *storage.Store
	scheduler *notify.Scheduler
	ctrl      *tasklist.Controller
	editor    *tasklist.Editor
	model     Model
}

func newHarness(t *testing.T, reminders Reminders) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "tasks.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	center, err := notify.Open(filepath.Join(dir, "reminders.yaml"))
	if err != nil {
		t.Fatalf("notify.Open failed: %v", err)
	}
	scheduler := notify.NewScheduler(center, log.New(io.Discard, "", 0))
	ctrl := tasklist.New(store, scheduler)
	t.Cleanup(ctrl.Close)
	editor := tasklist.NewEditor(store, scheduler)

	cfg, err := config.LoadOrCreate(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	m, err := New(ctrl, editor, reminders, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &harness{store: store, scheduler: scheduler, ctrl: ctrl, editor: editor, model: m}
}

func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		next, _ := h.model.Update(msg)
		h.model = next.(Model)
	}
}

func (h *harness) seed(t *testing.T, tasks ...storage.Task) {
	t.Helper()
	for _, task := range tasks {
		if err := h.editor.Save(task); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
}

func TestAddTaskThroughEditor(t *testing.T) {
	h := newHarness(t, nil)

	h.send(runes("a"))
	if h.model.edit == nil || !h.model.edit.isNew || h.model.edit.task.ID != 0 {
		t.Fatalf("Expected editor for new task 0, got %+v", h.model.edit)
	}
	h.send(runes("buy milk"), enter, runes("2 litres"), enter, enter, runes("home"), enter)

	if h.model.edit != nil {
		t.Fatalf("Expected editor to close after save, status %q", h.model.Status())
	}
	if h.ctrl.Len() != 1 {
		t.Fatalf("Expected 1 task, got %d", h.ctrl.Len())
	}
	saved, err := h.store.Task(0)
	if err != nil {
		t.Fatalf("Task failed: %v", err)
	}
	if saved.Title != "buy milk" || saved.Contents != "2 litres" || saved.Category != "home" {
		t.Errorf("Unexpected saved task %+v", saved)
	}
	if !strings.Contains(h.model.Status(), "Added") {
		t.Errorf("Expected Added status, got %q", h.model.Status())
	}
	if !strings.Contains(h.model.View(), "buy milk") {
		t.Error("Expected the new task in the view")
	}
}

func TestAddWithDefaultDateHasNoReminder(t *testing.T) {
	h := newHarness(t, nil)

	h.send(runes("a"), runes("call mum"), enter, enter, enter, enter)
	if h.model.edit != nil {
		t.Fatalf("Expected editor to close after save, status %q", h.model.Status())
	}
	if !strings.Contains(h.model.Status(), "no reminder") {
		t.Errorf("Expected a no-reminder hint, got %q", h.model.Status())
	}
	if n := len(h.scheduler.Pending()); n != 0 {
		t.Errorf("Expected no pending reminders, got %d", n)
	}
}

func TestUnchangedSaveKeepsDate(t *testing.T) {
	h := newHarness(t, nil)
	later := time.Date(2030, 1, 1, 9, 30, 40, 0, time.Local)
	earlier := time.Date(2030, 1, 1, 9, 30, 20, 0, time.Local)
	h.seed(t,
		storage.Task{ID: 0, Title: "A", Date: later},
		storage.Task{ID: 1, Title: "B", Date: earlier},
	)

	h.send(runes("j"), enter)
	if h.model.edit == nil || h.model.edit.task.Title != "A" {
		t.Fatalf("Expected editor on A, got %+v", h.model.edit)
	}
	h.send(enter, enter, enter, enter)
	if h.model.edit != nil {
		t.Fatalf("Expected editor to close after save, status %q", h.model.Status())
	}

	saved, err := h.store.Task(0)
	if err != nil {
		t.Fatalf("Task failed: %v", err)
	}
	if !saved.Date.Equal(later) {
		t.Errorf("Expected date %v to survive an unchanged save, got %v", later, saved.Date)
	}
	var got []string
	for _, task := range h.ctrl.Tasks() {
		got = append(got, task.Title)
	}
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("Expected order [B A], got %v", got)
	}
	if strings.Contains(h.model.Status(), "no reminder") {
		t.Errorf("Expected a future date to keep its reminder, got %q", h.model.Status())
	}
}

func TestEditCancelReloadsSorted(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t,
		storage.Task{ID: 0, Title: "x", Category: "home", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)},
		storage.Task{ID: 1, Title: "y", Category: "work", Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
	)
	h.send(runes("/"), runes("work"), enter)
	if h.ctrl.State() != tasklist.Filtered || h.ctrl.Len() != 1 {
		t.Fatalf("Expected filtered view with 1 row, got %s %d", h.ctrl.State(), h.ctrl.Len())
	}

	h.send(enter)
	if h.model.edit == nil || h.model.edit.task.Title != "y" {
		t.Fatalf("Expected editor on y, got %+v", h.model.edit)
	}
	h.send(tab, esc)
	if h.model.edit != nil {
		t.Fatal("Expected editor to close")
	}
	if h.ctrl.State() != tasklist.Sorted || h.ctrl.Len() != 2 {
		t.Errorf("Expected list to come back sorted with 2 rows, got %s %d", h.ctrl.State(), h.ctrl.Len())
	}
}

func TestSearchSubmit(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t,
		storage.Task{ID: 0, Title: "a", Category: "home", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)},
		storage.Task{ID: 1, Title: "b", Category: "homework", Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
	)

	h.send(runes("/"), runes("home"))
	if h.ctrl.State() != tasklist.Sorted {
		t.Fatal("Expected no filtering before submit")
	}
	h.send(enter)
	if h.ctrl.State() != tasklist.Filtered || h.ctrl.Len() != 1 {
		t.Fatalf("Expected 1 filtered row, got %s %d", h.ctrl.State(), h.ctrl.Len())
	}
	if !strings.Contains(h.model.View(), `category = "home"`) {
		t.Error("Expected the header to show the active filter")
	}

	h.send(runes("/"), enter)
	if h.ctrl.State() != tasklist.Sorted || h.ctrl.Len() != 2 {
		t.Errorf("Expected empty submit to reset, got %s %d", h.ctrl.State(), h.ctrl.Len())
	}

	h.send(runes("/"), runes("work"), esc)
	if h.ctrl.State() != tasklist.Sorted {
		t.Error("Expected cancelled search to keep the current view")
	}
}

func TestSearchKeepsWhitespace(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t,
		storage.Task{ID: 0, Title: "a", Category: "home", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)},
		storage.Task{ID: 1, Title: "b", Category: " home ", Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
	)

	h.send(runes("/"), runes("  "), enter)
	if h.ctrl.State() != tasklist.Filtered || h.ctrl.Len() != 0 {
		t.Errorf("Expected blank query to filter to 0 rows, got %s %d", h.ctrl.State(), h.ctrl.Len())
	}

	h.send(runes("/"), runes(" home "), enter)
	if h.ctrl.Len() != 1 {
		t.Fatalf("Expected 1 row for \" home \", got %d", h.ctrl.Len())
	}
	if row, _ := h.ctrl.Row(0); row.Title != "b" {
		t.Errorf("Expected b, got %q", row.Title)
	}
}

func TestDeleteConfirm(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t,
		storage.Task{ID: 0, Title: "first", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)},
		storage.Task{ID: 1, Title: "second", Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
	)

	h.send(runes("j"), runes("d"))
	if !h.model.confirmDel {
		t.Fatal("Expected delete confirmation")
	}
	h.send(runes("n"))
	if h.ctrl.Len() != 2 {
		t.Fatalf("Expected nothing deleted after n, got %d rows", h.ctrl.Len())
	}

	h.send(runes("d"), runes("y"))
	if h.ctrl.Len() != 1 {
		t.Fatalf("Expected 1 row after delete, got %d", h.ctrl.Len())
	}
	row, _ := h.ctrl.Row(0)
	if row.Title != "first" {
		t.Errorf("Expected first to remain, got %q", row.Title)
	}
	if h.ctrl.Selected() != 0 {
		t.Errorf("Expected selection clamped to 0, got %d", h.ctrl.Selected())
	}
}

func TestActionsDisabledOnEmptyList(t *testing.T) {
	h := newHarness(t, nil)
	h.send(runes("d"))
	if h.model.confirmDel {
		t.Error("Expected delete to be ignored on an empty list")
	}
	h.send(enter)
	if h.model.edit != nil {
		t.Error("Expected open to be ignored on an empty list")
	}
	if !strings.Contains(h.model.View(), "No tasks") {
		t.Error("Expected empty-list hint")
	}
}

func TestViewRendersRowDate(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, storage.Task{ID: 0, Title: "dentist", Date: time.Date(2024, 7, 8, 14, 3, 0, 0, time.Local)})
	view := h.model.View()
	if !strings.Contains(view, "dentist") || !strings.Contains(view, "2024-07-08 14:03") {
		t.Errorf("Expected title and date in view, got:\n%s", view)
	}
}

type fakeReminders struct {
	due []notify.Request
	err error
}

func (f *fakeReminders) Deliver() ([]notify.Request, error) {
	due := f.due
	f.due = nil
	return due, f.err
}

func TestReminderDelivery(t *testing.T) {
	fake := &fakeReminders{due: []notify.Request{{ID: "0", Title: "stretch", Body: "(no contents)"}}}
	h := newHarness(t, fake)
	if h.model.Init() == nil {
		t.Error("Expected Init to schedule a reminder tick")
	}

	next, cmd := h.model.Update(reminderMsg(time.Now()))
	h.model = next.(Model)
	if !strings.Contains(h.model.Status(), "stretch") {
		t.Errorf("Expected reminder in status, got %q", h.model.Status())
	}
	if cmd == nil {
		t.Error("Expected the tick to be re-armed")
	}

	fake.err = errors.New("disk gone")
	h.send(reminderMsg(time.Now()))
	if !strings.Contains(h.model.Status(), "disk gone") {
		t.Errorf("Expected delivery error in status, got %q", h.model.Status())
	}
}

func TestEditStateTaskOf(t *testing.T) {
	es := editState{task: storage.Task{ID: 4}, title: "t", date: "2024-02-03 10:20", category: "c"}
	task, err := es.taskOf()
	if err != nil {
		t.Fatalf("taskOf failed: %v", err)
	}
	if task.ID != 4 || task.Date.Format(editDateLayout) != "2024-02-03 10:20" || task.Category != "c" {
		t.Errorf("Unexpected task %+v", task)
	}

	kept := time.Date(2024, 2, 3, 10, 20, 45, 500, time.Local)
	es = editState{task: storage.Task{ID: 4, Date: kept}, date: kept.Format(editDateLayout)}
	task, err = es.taskOf()
	if err != nil {
		t.Fatalf("taskOf failed: %v", err)
	}
	if !task.Date.Equal(kept) {
		t.Errorf("Expected untouched date to keep %v, got %v", kept, task.Date)
	}

	es.date = "tomorrow"
	if _, err := es.taskOf(); err == nil {
		t.Error("Expected invalid date to fail")
	}
}

func TestWrapIndex(t *testing.T) {
	cases := []struct{ idx, n, want int }{
		{0, 4, 0},
		{4, 4, 0},
		{-1, 4, 3},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := wrapIndex(c.idx, c.n); got != c.want {
			t.Errorf("wrapIndex(%d, %d) = %d, want %d", c.idx, c.n, got, c.want)
		}
	}
}
