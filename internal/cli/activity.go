package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/store"
)

func newActivityCmd(app *App) *cobra.Command {
	var limit int
	var severity string
	var since time.Duration
	var mine bool

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			filter := store.ActivityFilter{Limit: limit}
			if severity != "" {
				sev := model.Severity(severity)
				switch sev {
				case model.SeveritySuccess, model.SeverityInfo, model.SeverityError:
				default:
					return fmt.Errorf("unknown severity %q (success|info|error)", severity)
				}
				filter.Severity = &sev
			}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.Since = &from
			}
			if mine {
				sess, err := e.requireSession()
				if err != nil {
					return err
				}
				filter.UserID = &sess.Identity.ID
			}

			entries, err := e.activity.GetNotifications(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return writeOut(cmd, app, entries, func() error {
				if len(entries) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "No activity")
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), activityTable(entries))
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	cmd.Flags().StringVar(&severity, "severity", "", "Only show this severity (success|info|error)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show entries newer than this, e.g. 24h")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only show entries for the signed-in user")

	cmd.AddCommand(newActivityPruneCmd(app))

	return cmd
}

func newActivityPruneCmd(app *App) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old activity entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.activity.PruneNotifications(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold")

	return cmd
}
