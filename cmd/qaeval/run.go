package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/internal/store"
)

func newRunCmd(st *cliState) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one pending test run",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return processRun(cmd, st, runID)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID to process")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func processRun(cmd *cobra.Command, st *cliState, runID string) error {
	if st == nil || st.cfg == nil {
		return errors.New("run: missing config (internal error)")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run: missing run ID")
	}

	db, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	orch, err := buildOrchestrator(st.cfg, db, st.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := orch.ProcessRun(ctx, runID); err != nil {
		return err
	}

	results, err := db.GetResults(ctx, runID)
	if err != nil {
		return err
	}
	completed, failed := 0, 0
	for _, r := range results {
		if r.Status == store.ResultStatusFailed {
			failed++
		} else {
			completed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d completed, %d failed\n", runID, completed, failed)
	return nil
}
