package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasksync/internal/app"
	"github.com/nhle/tasksync/internal/notify"
	"github.com/nhle/tasksync/internal/push"
)

// runTUI starts the interactive client. Logs are discarded unless a log
// file is configured, since the TUI owns the terminal.
func runTUI(a *App) error {
	e, err := a.open(io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	manager := push.NewManager(push.NewWebSocketDialer(e.cfg.Push.URL), push.Options{
		BackoffInitial: e.cfg.BackoffInitial(),
		BackoffMax:     e.cfg.BackoffMax(),
		Logger:         e.logger,
	})
	defer manager.Close()

	m := app.New(app.Deps{
		Sessions:       e.sessions,
		Gateway:        e.gateway,
		Auth:           e.gateway,
		Push:           manager,
		Notifications:  notify.New(e.cfg.NotificationTTL(), nil),
		Activity:       e.activity,
		RequestTimeout: e.cfg.RequestTimeout(),
		Logger:         e.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
