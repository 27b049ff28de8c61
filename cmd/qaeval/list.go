package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/internal/store"
)

func newListCmd(st *cliState) *cobra.Command {
	var (
		suiteID string
		status  string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test runs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd, st, suiteID, status, limit)
		},
	}

	cmd.Flags().StringVar(&suiteID, "suite", "", "filter by suite ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (PENDING|COMPLETED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max runs to list")

	return cmd
}

func listRuns(cmd *cobra.Command, st *cliState, suiteID, status string, limit int) error {
	if st == nil || st.cfg == nil {
		return errors.New("list: missing config (internal error)")
	}

	db, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), store.RunFilter{
		SuiteID: suiteID,
		Status:  status,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSUITE\tMODEL\tSTATUS\tCREATED\tCOMPLETED")
	for _, run := range runs {
		completed := "-"
		if !run.CompletedAt.IsZero() {
			completed = run.CompletedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.SuiteID, run.Model, run.Status,
			run.CreatedAt.Format(time.RFC3339), completed)
	}
	return w.Flush()
}
