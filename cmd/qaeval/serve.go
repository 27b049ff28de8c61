package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/api"
	"github.com/stellarlinkco/qa-eval/internal/jobs"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

func newServeCmd(st *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation API server",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(st, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func serve(st *cliState, addr string) error {
	if st == nil || st.cfg == nil {
		return errors.New("serve: missing config (internal error)")
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

	queue := jobs.NewQueue(orch, st.logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	server, err := api.NewServer(st.cfg, db, queue, st.logger)
	if err != nil {
		return err
	}

	st.logger.Info("serving evaluation API", "addr", addr)
	return server.Run(addr)
}
