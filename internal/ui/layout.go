package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/theme"
)

// Layout splits the terminal into header, notification banner, content and
// status bar rows.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	BannerHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one row each for header, banner and
// status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		BannerHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for the task list.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.BannerHeight-l.StatusBarHeight, 1)
}

// RenderHeader renders the title on the left and the signed-in user and
// push channel state on the right.
func (l Layout) RenderHeader(title, user, channel string) string {
	left := theme.HeaderStyle.Render(title)

	right := theme.HeaderStyle.Render(user)
	if channel != "" {
		right = lipgloss.JoinHorizontal(
			lipgloss.Top,
			right,
			theme.ChannelStyle(channel).
				Background(theme.HeaderStyle.GetBackground()).
				Padding(0, 1).
				Render("● "+channel),
		)
	}

	return fill(l.Width, theme.HeaderStyle, left, right)
}

// RenderBanner renders the visible notification, or an empty row.
func (l Layout) RenderBanner(n model.Notification, ok bool) string {
	if !ok {
		return lipgloss.NewStyle().Width(l.Width).Render("")
	}
	return theme.NotificationStyle(string(n.Severity)).
		Width(l.Width).
		Render(n.Message)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return fill(l.Width, theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// RenderWithFrame stacks header, banner, content and status bar.
func (l Layout) RenderWithFrame(header, banner, content, statusBar string) string {
	content = lipgloss.NewStyle().Height(l.ContentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, banner, content, statusBar)
}

// fill joins left and right with a gap painted in style's background.
func fill(width int, style lipgloss.Style, left, right string) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
