package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/gateway"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/ui/loginform"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: "Sign in with email and password. Without --password the credentials\n" +
			"are prompted for interactively; TASKSYNC_PASSWORD is also honored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			if password == "" {
				password = os.Getenv("TASKSYNC_PASSWORD")
			}
			if email == "" || password == "" {
				email, password, err = loginform.Prompt(email)
				if err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errNoCredentials
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
			defer cancel()

			identity, token, err := e.gateway.Authenticate(ctx, email, password)
			if err != nil {
				if msg := gateway.Message(err); msg != "" {
					return errors.New(msg)
				}
				return err
			}
			if _, err := e.sessions.Login(identity, token); err != nil {
				return err
			}

			msg := "Welcome, " + identity.DisplayName() + "!"
			e.record(cmd.Context(), msg, model.SeveritySuccess, identity.ID)
			return writeOut(cmd, app, identity, func() error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("TASKSYNC_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := e.sessions.Restore()
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err := e.sessions.Logout(); err != nil {
				return err
			}

			const msg = "Logged out successfully"
			e.record(cmd.Context(), msg, model.SeverityInfo, sess.Identity.ID)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := e.requireSession()
			if err != nil {
				return err
			}

			id := sess.Identity
			return writeOut(cmd, app, id, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nrole: %s\nid:   %s\n",
					id.DisplayName(), id.Email, id.Role, id.ID)
				return err
			})
		},
	}
}

var errNoCredentials = errors.New("email and password are required")
