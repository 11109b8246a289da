package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

func newLeadsCmd(opts *cliOptions) *cobra.Command {
	var (
		search string
		tag    string
		status string
		sortBy string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tag != "" && !entity.LeadTag(tag).IsValid() {
				return fmt.Errorf("invalid --tag %q", tag)
			}
			if status != "" && !entity.LeadStatus(status).IsValid() {
				return fmt.Errorf("invalid --status %q", status)
			}
			if sortBy != "" && !usecase.LeadSortField(sortBy).IsValid() {
				return fmt.Errorf("invalid --sort %q (name or dateAdded)", sortBy)
			}

			return withStore(cmd.Context(), opts, func(cfg config.Config, store *usecase.Store) error {
				leads := usecase.FilterLeads(store.Leads(), usecase.LeadFilter{
					Search: search,
					Tag:    entity.LeadTag(tag),
					Status: entity.LeadStatus(status),
				})
				if sortBy != "" {
					leads = usecase.SortLeads(leads, usecase.LeadSortField(sortBy), !desc, cfg.Language)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tPHONE\tTAG\tSTATUS\tLAST CONTACT\tMEETINGS")
				for _, l := range leads {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
						l.ID, l.Name, l.Phone, l.Tag, l.Status,
						entity.FormatDisplayDate(l.LastContactDate), len(l.Meetings))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name (any case) or phone")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag (hot, new, cold)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by name or dateAdded")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}
