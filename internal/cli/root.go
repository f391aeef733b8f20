// Package cli wires configuration, storage and transport into the tasksync
// commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/credential"
	"github.com/nhle/tasksync/internal/gateway"
	"github.com/nhle/tasksync/internal/logging"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/session"
	"github.com/nhle/tasksync/internal/store"
)

// App holds the global flags and the hooks commands use to reach the
// outside world.
type App struct {
	ConfigPath string
	JSON       bool

	// OpenVault opens credential storage. Tests replace it with an
	// in-memory keyring.
	OpenVault func(dir string) (session.Vault, error)
}

// env is everything a command needs, opened from configuration.
type env struct {
	cfg      *model.AppConfig
	logger   *slog.Logger
	sessions *session.Store
	gateway  *gateway.HTTPGateway
	activity *store.SQLiteStore
	closers  []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{OpenVault: openKeyring})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tasksync",
		Short:        "Collaborative task list, kept in sync with the server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tasksync

  # Sign in once; the session survives restarts
  tasksync login --email alice@example.com

  # Scriptable commands
  tasksync list
  tasksync add "Write release notes" --priority high --tags docs,release
  tasksync done <task-id>
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKSYNC_CONFIG", model.DefaultConfigPath()), "Path to config file")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// open loads configuration and opens the logger, credential vault and
// activity log. logOut is where logs go when no log file is configured.
func (app *App) open(logOut io.Writer) (*env, error) {
	cfg, err := model.LoadConfig(app.ConfigPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}

	logger, logCloser, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	e.logger = logger
	e.closers = append(e.closers, logCloser)

	vault, err := app.OpenVault(cfg.Credential.Dir)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.sessions = session.NewStore(vault, logger.With("component", "session"))

	client := gateway.NewClient(cfg.API.BaseURL, e.sessions, cfg.RequestTimeout())
	e.gateway = gateway.New(client, cfg.API.PageSize)

	activity, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	e.activity = activity
	e.closers = append(e.closers, activity)

	return e, nil
}

// requireSession restores the persisted session or fails.
func (e *env) requireSession() (*session.Session, error) {
	sess, err := e.sessions.Restore()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNotLoggedIn
	}
	return sess, nil
}

var errNotLoggedIn = errors.New("not logged in; run `tasksync login`")

// remoteErr maps a gateway failure to what the user sees. A rejected
// credential also clears the stored session.
func (e *env) remoteErr(err error) error {
	if gateway.IsAuthError(err) {
		if lerr := e.sessions.Logout(); lerr != nil {
			e.logger.Warn("clearing session", "error", lerr)
		}
		return errors.New("session expired; run `tasksync login`")
	}
	if errors.Is(err, gateway.ErrNoSession) {
		return errNotLoggedIn
	}
	if msg := gateway.Message(err); msg != "" {
		return errors.New(msg)
	}
	return err
}

func openKeyring(dir string) (session.Vault, error) {
	return credential.Open(dir)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

