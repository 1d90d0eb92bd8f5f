package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tagsmith/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		tagFilter string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent settings changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if hist == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled in the configuration")
				return nil
			}
			defer hist.Close()

			var entries []history.Entry
			if tagFilter != "" {
				entries, err = hist.ForTag(cmd.Context(), tagFilter, limit)
			} else {
				entries, err = hist.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history entries")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				action := "updated"
				if entry.CreatedRow {
					action = "created"
				}
				rows = append(rows, []string{
					entry.AppliedAt.UTC().Format(time.RFC3339),
					entry.Tag,
					entry.Field,
					orDash(entry.OldValue),
					orDash(entry.NewValue),
					action,
					shortOperationID(entry.OperationID),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Applied", "Tag", "Field", "Old", "New", "Action", "Operation"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&tagFilter, "tag", "", "Only show changes for one tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries")
	return cmd
}

func shortOperationID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
