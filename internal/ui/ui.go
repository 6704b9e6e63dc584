package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskapp/internal/config"
	"taskapp/internal/notify"
	"taskapp/internal/tasklist"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeEdit
)

// Reminders fires reminders that have come due.
type Reminders interface {
	Deliver() ([]notify.Request, error)
}

type reminderMsg time.Time

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type Model struct {
	ctrl       *tasklist.Controller
	editor     *tasklist.Editor
	reminders  Reminders
	cfg        config.Config
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel int
	edit       *editState
	now        func() time.Time
}

func Run(ctrl *tasklist.Controller, editor *tasklist.Editor, reminders Reminders, cfg config.Config) error {
	m, err := New(ctrl, editor, reminders, cfg)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// New loads the sorted list and returns a model ready to run.
func New(ctrl *tasklist.Controller, editor *tasklist.Editor, reminders Reminders, cfg config.Config) (Model, error) {
	if err := ctrl.Load(); err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		ctrl:      ctrl,
		editor:    editor,
		reminders: reminders,
		cfg:       cfg,
		input:     ti,
		mode:      modeList,
		now:       time.Now,
		status: fmt.Sprintf("Press '%s' to add, '%s' to search, '%s' to delete.",
			cfg.Keys.New, cfg.Keys.Search, cfg.Keys.Delete),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	if m.reminders == nil || m.cfg.ReminderPollSeconds <= 0 {
		return nil
	}
	return tea.Tick(time.Duration(m.cfg.ReminderPollSeconds)*time.Second, func(t time.Time) tea.Msg {
		return reminderMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.edit != nil {
			return m.updateEditMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeSearch {
			return m.updateSearchMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case reminderMsg:
		return m.deliverReminders()
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) deliverReminders() (tea.Model, tea.Cmd) {
	due, err := m.reminders.Deliver()
	if err != nil {
		m.status = fmt.Sprintf("reminders failed: %v", err)
		return m, m.tick()
	}
	if len(due) > 0 {
		parts := make([]string, len(due))
		for i, r := range due {
			parts[i] = fmt.Sprintf("%s: %s", r.Title, r.Body)
		}
		m.status = "Reminder • " + strings.Join(parts, " • ")
	}
	return m, m.tick()
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.ctrl.MoveSelection(1)
	case m.cfg.Keys.Up, "up":
		m.ctrl.MoveSelection(-1)
	case m.cfg.Keys.Select:
		task, ok := m.ctrl.Select(m.ctrl.Selected())
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		return m.startEdit(task, false)
	case m.cfg.Keys.New:
		task, err := m.ctrl.NewTask()
		if err != nil {
			m.status = fmt.Sprintf("new task failed: %v", err)
			return m, nil
		}
		return m.startEdit(task, true)
	case m.cfg.Keys.Delete:
		row, ok := m.ctrl.Row(m.ctrl.Selected())
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = m.ctrl.Selected()
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", row.Title)
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.SetValue("")
		m.input.Placeholder = "category"
		m.input.Focus()
		m.status = "Search category: Enter to submit (empty shows all), Esc to cancel"
	}
	return m, nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Search cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		text := m.input.Value()
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		if err := m.ctrl.Search(text); err != nil {
			m.status = fmt.Sprintf("search failed: %v", err)
			return m, nil
		}
		if text == "" {
			m.status = "Showing all tasks"
		} else {
			m.status = fmt.Sprintf("%d task(s) in %q", m.ctrl.Len(), text)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		task, err := m.ctrl.DeleteRow(m.pendingDel)
		if err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted \"%s\"", task.Title)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	header := "Tasks"
	if m.ctrl.State() == tasklist.Filtered {
		header += fmt.Sprintf(" • category = %q", m.ctrl.Query())
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if m.edit != nil {
		b.WriteString(m.renderEditor())
		b.WriteString("\n")
		b.WriteString("Field: " + m.edit.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	} else {
		if m.ctrl.Len() == 0 {
			b.WriteString(fmt.Sprintf("No tasks. Press '%s' to add one.", m.cfg.Keys.New))
		} else {
			b.WriteString(m.renderTaskList())
		}
		if m.mode == modeSearch {
			b.WriteString("\n")
			b.WriteString("Search: ")
			b.WriteString(m.input.View())
		}
	}

	b.WriteString("\n\n")
	if err := m.ctrl.Err(); err != nil {
		b.WriteString(alertStyle.Render(err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	selected := m.ctrl.Selected()
	width := 0
	for i := 0; i < m.ctrl.Len(); i++ {
		row, _ := m.ctrl.Row(i)
		width = max(width, lipgloss.Width(displayTitle(row.Title)))
	}
	for i := 0; i < m.ctrl.Len(); i++ {
		row, ok := m.ctrl.Row(i)
		if !ok {
			break
		}
		title := displayTitle(row.Title)
		pad := strings.Repeat(" ", width-lipgloss.Width(title))
		line := fmt.Sprintf("%s%s  %s", title, pad, dateStyle.Render(row.Date))
		if i == selected && m.mode == modeList {
			b.WriteString(selectedStyle.Render("> " + title + pad))
			b.WriteString("  " + dateStyle.Render(row.Date))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s open • %s add • %s delete • %s search • %s quit",
		k.Up, k.Down, k.Select, k.New, k.Delete, k.Search, k.Quit)
}

func (m Model) Status() string {
	return m.status
}
