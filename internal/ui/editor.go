package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskapp/internal/storage"
)

const editDateLayout = "2006-01-02 15:04"

type editState struct {
	task     storage.Task
	isNew    bool
	title    string
	contents string
	date     string
	category string
	index    int
}

func editFields() []string {
	return []string{"title", "contents", "date (YYYY-MM-DD HH:MM)", "category"}
}

func (es editState) currentLabel() string {
	return editFields()[es.index]
}

func (es editState) currentValue() string {
	switch es.index {
	case 0:
		return es.title
	case 1:
		return es.contents
	case 2:
		return es.date
	case 3:
		return es.category
	default:
		return ""
	}
}

func (es *editState) setCurrentValue(v string) {
	switch es.index {
	case 0:
		es.title = v
	case 1:
		es.contents = v
	case 2:
		es.date = v
	case 3:
		es.category = v
	}
}

// taskOf is the task the current field values describe. An untouched date
// field keeps the full-precision date the task came in with.
func (es editState) taskOf() (storage.Task, error) {
	date := es.task.Date
	if strings.TrimSpace(es.date) != es.task.Date.Format(editDateLayout) {
		parsed, err := parseDate(es.date)
		if err != nil {
			return storage.Task{}, err
		}
		date = parsed
	}
	t := es.task
	t.Title = es.title
	t.Contents = es.contents
	t.Date = date
	t.Category = es.category
	return t, nil
}

func (m Model) startEdit(t storage.Task, isNew bool) (tea.Model, tea.Cmd) {
	m.edit = &editState{
		task:     t,
		isNew:    isNew,
		title:    t.Title,
		contents: t.Contents,
		date:     t.Date.Format(editDateLayout),
		category: t.Category,
	}
	m.mode = modeEdit
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.input.Focus()
	m.status = m.editPrompt()
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		return m.leaveEdit("Edit cancelled")
	case "tab", "down":
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index+1, len(editFields()))
		return m.showField(), nil
	case "shift+tab", "up":
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index-1, len(editFields()))
		return m.showField(), nil
	case m.cfg.Keys.Confirm:
		m.edit.setCurrentValue(m.input.Value())
		if m.edit.index >= len(editFields())-1 {
			return m.saveEdit()
		}
		m.edit.index++
		return m.showField(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) showField() Model {
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.status = m.editPrompt()
	return m
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	task, err := m.edit.taskOf()
	if err != nil {
		m.status = fmt.Sprintf("date invalid: %v", err)
		return m, nil
	}
	if err := m.editor.Save(task); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	verb := "Saved"
	if m.edit.isNew {
		verb = "Added"
	}
	status := fmt.Sprintf("%s \"%s\"", verb, displayTitle(task.Title))
	if !task.Date.After(m.now()) {
		status += " • no reminder: date has passed"
	}
	return m.leaveEdit(status)
}

// leaveEdit returns to the list, which always comes back sorted.
func (m Model) leaveEdit(status string) (tea.Model, tea.Cmd) {
	m.edit = nil
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.status = status
	if err := m.ctrl.Load(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
	}
	return m, nil
}

func (m Model) editPrompt() string {
	if m.edit == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Tab to move, Esc to cancel.",
		m.edit.currentLabel(), m.edit.index+1, len(editFields()))
}

func (m Model) renderEditor() string {
	if m.edit == nil {
		return ""
	}
	values := []string{m.edit.title, m.edit.contents, m.edit.date, m.edit.category}
	var b strings.Builder
	heading := fmt.Sprintf("Task #%d", m.edit.task.ID)
	if m.edit.isNew {
		heading += " (new)"
	}
	b.WriteString(heading + "\n")
	for i, name := range editFields() {
		prefix := " "
		if i == m.edit.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-24s : %s\n", prefix, name, val))
	}
	return b.String()
}

func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(editDateLayout, strings.TrimSpace(v), time.Local)
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
