package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

func newTasksCmd(opts *cliOptions) *cobra.Command {
	var active, completed bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks, incomplete first and by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if active && completed {
				return errors.New("--active and --completed are mutually exclusive")
			}
			var filter *bool
			if active || completed {
				filter = &completed
			}

			return withStore(cmd.Context(), opts, func(cfg config.Config, store *usecase.Store) error {
				now := time.Now()
				tasks := usecase.SortTasks(usecase.FilterTasks(store.Tasks(), filter))

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDONE\tDUE\tTITLE\tLEAD")
				for _, t := range tasks {
					leadName := "Unknown Lead"
					if lead, ok := store.GetLead(t.LeadID); ok {
						leadName = lead.Name
					}
					done := " "
					switch {
					case t.Completed:
						done = "x"
					case t.IsOverdue(now):
						done = "!"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, done, entity.FormatDisplayDateTime(t.DueDate), t.Title, leadName)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Only incomplete tasks")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed tasks")
	return cmd
}
