package app

import "github.com/nhle/tasksync/internal/ui/tasklist"

func (m Model) render() string {
	user := "not signed in"
	channel := ""
	if cur := m.sessions.Current(); cur != nil {
		user = cur.Identity.DisplayName()
		channel = m.push.State().String()
	}

	header := m.layout.RenderHeader("tasksync", user, channel)
	banner := m.layout.RenderBanner(m.notes.Current())

	var content, hints string
	switch m.currentView {
	case ViewLogin:
		content = m.loginForm.View()
		hints = m.help.ShortHelpView(m.keys.FormHelp())
	case ViewTaskForm:
		content = m.taskForm.View()
		hints = m.help.ShortHelpView(m.keys.FormHelp())
	default:
		content = m.renderList()
		hints = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return m.layout.RenderWithFrame(header, banner, content, m.layout.RenderStatusBar(hints))
}

func (m Model) renderList() string {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()

	switch {
	case !m.sessions.Valid():
		return tasklist.Placeholder("Run `tasksync login` to sign in", w, h)
	case m.loading && m.tasks.Len() == 0:
		return tasklist.Placeholder("Loading tasks…", w, h)
	case m.tasks.Len() == 0:
		return tasklist.Placeholder("No tasks yet. Press n to create one.", w, h)
	}
	return m.list.View()
}
