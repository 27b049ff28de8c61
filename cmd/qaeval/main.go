package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/internal/config"
)

type cliState struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{
		configPath: config.DefaultPath,
		logger:     newLogger(),
	}

	root := &cobra.Command{
		Use:           "qaeval",
		Short:         "Evaluate LLM answer quality against test suites",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newServeCmd(st))
	root.AddCommand(newImportCmd(st))
	root.AddCommand(newListCmd(st))
	root.AddCommand(newGenerateCmd(st))
	return root
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("QA_EVAL_LOG_LEVEL"); v != "" {
		var lv slog.Level
		if err := lv.UnmarshalText([]byte(v)); err == nil {
			level = lv
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(st *cliState) error {
	cfg, err := config.Load(st.configPath)
	if err != nil {
		return err
	}
	st.cfg = cfg
	return nil
}
