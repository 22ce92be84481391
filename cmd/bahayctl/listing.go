package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
)

func newListingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Inspect and moderate listings",
	}

	var status string
	var limit int
	list := &cobra.Command{
		Use:     "list",
		Short:   "List listings, newest first",
		PreRunE: a.ensure,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := domain.Status(status)
			if st != "" && !st.Valid() {
				return fmt.Errorf("invalid status %q", status)
			}
			items, total, err := a.listings.ListScoped(cmd.Context(), query.Scope{Status: st}, domain.Page{Page: 1, Limit: limit})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tPRICE\tTITLE")
			for _, l := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.Status, domain.FormatPrice(l), l.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(items), total)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", string(domain.StatusPending), "draft, pending, published, rejected or empty for all")
	list.Flags().IntVar(&limit, "limit", 50, "maximum rows")

	var id string
	approve := &cobra.Command{
		Use:     "approve",
		Short:   "Publish a pending listing",
		PreRunE: a.ensure,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.listings.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if l == nil {
				return errors.New("listing not found")
			}
			from := l.Status
			to, err := domain.Transition(from, domain.ActionApprove)
			if err != nil {
				return err
			}
			ok, err := a.listings.UpdateStatus(cmd.Context(), l.ID, from, to, nil)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("listing status changed concurrently; retry")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", l.ID, from, to)
			return nil
		},
	}
	approve.Flags().StringVar(&id, "id", "", "listing id")
	_ = approve.MarkFlagRequired("id")

	cmd.AddCommand(list, approve)
	return cmd
}
