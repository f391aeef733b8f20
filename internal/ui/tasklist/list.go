package tasklist

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasksync/internal/keys"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// ItemDelegate draws one task per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	_, _ = io.WriteString(w, RenderLine(ti.Task, index == m.Index()))
}

// Model is the task list view. It owns selection, paging and filtering;
// the tasks themselves are pushed in by the orchestrator.
type Model struct {
	list list.Model
}

// New creates an empty task list driven by k.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("task", "tasks")
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	l.KeyMap.CursorUp = k.Up
	l.KeyMap.CursorDown = k.Down
	l.KeyMap.Filter = k.Filter
	// "d" deletes.
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")

	return Model{list: l}
}

// SetTasks replaces the displayed tasks, keeping the selection in range.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t}
	}
	cmd := m.list.SetItems(items)

	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	return cmd
}

// Reset clears the filter and moves the selection to the top.
func (m *Model) Reset() {
	m.list.ResetFilter()
	m.list.ResetSelected()
}

// Selected returns the highlighted task.
func (m Model) Selected() (model.Task, bool) {
	ti, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return ti.Task, true
}

// Index returns the position of the selection among the visible tasks.
func (m Model) Index() int {
	return m.list.Index()
}

// SettingFilter reports whether the filter input has focus.
func (m Model) SettingFilter() bool {
	return m.list.SettingFilter()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Update forwards navigation, filtering and list-internal messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m Model) View() string {
	return m.list.View()
}

// Placeholder renders a centered hint in place of an empty list.
func Placeholder(text string, width, height int) string {
	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		theme.HelpStyle.Render(text),
	)
}
