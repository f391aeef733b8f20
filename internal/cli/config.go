package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/model"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(app.ConfigPath)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, cfg, func() error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "config:      %s\n", app.ConfigPath)
				fmt.Fprintf(out, "api:         %s (timeout %s, page size %d)\n", cfg.API.BaseURL, cfg.RequestTimeout(), cfg.API.PageSize)
				fmt.Fprintf(out, "push:        %s (backoff %s..%s)\n", cfg.Push.URL, cfg.BackoffInitial(), cfg.BackoffMax())
				fmt.Fprintf(out, "notify ttl:  %s\n", cfg.NotificationTTL())
				fmt.Fprintf(out, "activity db: %s\n", cfg.Store.Path)
				fmt.Fprintf(out, "log:         %s/%s %s\n", cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
				return nil
			})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(app.ConfigPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", app.ConfigPath)
				}
			}
			cfg, err := model.LoadConfig(app.ConfigPath)
			if err != nil {
				return err
			}
			if err := model.SaveConfig(app.ConfigPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", app.ConfigPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
