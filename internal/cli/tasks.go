package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/ui/taskform"
)

// withSession opens the environment, restores the session and runs fn
// with a context bounded by the request timeout.
func withSession(
	cmd *cobra.Command,
	app *App,
	fn func(ctx context.Context, e *env, userID string) error,
) error {
	e, err := app.open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
	defer cancel()

	return fn(ctx, e, sess.Identity.ID)
}

func newListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, e *env, userID string) error {
				tasks, err := e.gateway.List(ctx)
				if err != nil {
					return e.fail(ctx, err, "Failed to load tasks", userID)
				}

				if status != "" {
					kept := tasks[:0]
					for _, t := range tasks {
						if t.Status == status {
							kept = append(kept, t)
						}
					}
					tasks = kept
				}

				return writeOut(cmd, app, tasks, func() error {
					if len(tasks) == 0 {
						_, err := fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
						return err
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), taskTable(tasks))
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show tasks with this status (todo|in_progress|review|done)")

	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, e *env, _ string) error {
				task, err := e.gateway.Get(ctx, args[0])
				if err != nil {
					return e.remoteErr(err)
				}
				return writeOut(cmd, app, task, func() error {
					_, err := fmt.Fprint(cmd.OutOrStdout(), taskDetail(task))
					return err
				})
			})
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var input model.TaskInput
	var tags string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Title = args[0]
			input.Tags = taskform.SplitTags(tags)

			return withSession(cmd, app, func(ctx context.Context, e *env, userID string) error {
				task, err := e.gateway.Create(ctx, input)
				if err != nil {
					return e.fail(ctx, err, "Failed to create task", userID)
				}
				e.record(ctx, "Task created successfully", model.SeveritySuccess, userID)
				return writeOut(cmd, app, task, func() error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "Task created successfully: %s\n", task.ID)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&input.Priority, "priority", "p", model.PriorityMedium, "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&input.Status, "status", model.StatusTodo, "Initial status")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.AssigneeID, "assignee", "", "Assignee user ID")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")

	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task done (or set another status with --status)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, e *env, userID string) error {
				task, err := e.gateway.Update(ctx, args[0], model.TaskPatch{Status: &status})
				if err != nil {
					return e.fail(ctx, err, "Failed to update task", userID)
				}
				e.record(ctx, "Task updated successfully", model.SeveritySuccess, userID)
				return writeOut(cmd, app, task, func() error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "Task updated successfully: %s is %s\n", task.ID, task.Status)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", model.StatusDone, "Status to set")

	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, e *env, userID string) error {
				if err := e.gateway.Delete(ctx, args[0]); err != nil {
					return e.fail(ctx, err, "Failed to delete task", userID)
				}
				e.record(ctx, "Task deleted successfully", model.SeveritySuccess, userID)
				fmt.Fprintln(cmd.OutOrStdout(), "Task deleted successfully")
				return nil
			})
		},
	}
}
