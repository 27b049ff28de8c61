package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/internal/generator"
	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

func newGenerateCmd(st *cliState) *cobra.Command {
	var (
		topic       string
		contextFile string
		model       string
		numCases    int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a test suite with an LLM and import it",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSuite(cmd, st, topic, contextFile, model, numCases)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic to generate questions about")
	cmd.Flags().StringVar(&contextFile, "context", "", "optional file with reference material")
	cmd.Flags().StringVar(&model, "model", "", "generation model (defaults to the judge model)")
	cmd.Flags().IntVar(&numCases, "cases", 0, "number of cases to generate")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func generateSuite(cmd *cobra.Command, st *cliState, topic, contextFile, model string, numCases int) error {
	if st == nil || st.cfg == nil {
		return errors.New("generate: missing config (internal error)")
	}

	registry, err := llm.NewRegistryFromConfig(st.cfg)
	if err != nil {
		return err
	}
	if strings.TrimSpace(model) == "" {
		model = st.cfg.Evaluation.JudgeModel
	}

	var contextText string
	if contextFile != "" {
		b, err := os.ReadFile(contextFile)
		if err != nil {
			return fmt.Errorf("generate: read context: %w", err)
		}
		contextText = string(b)
	}

	gen := &generator.Generator{Registry: registry, Model: model}
	f, err := gen.Generate(cmd.Context(), &generator.Request{
		Topic:    topic,
		Context:  contextText,
		NumCases: numCases,
	})
	if err != nil {
		return err
	}

	db, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := f.Import(cmd.Context(), db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated suite %q (%s): %d cases\n",
		created.Name, created.ID, len(f.Cases))
	return nil
}
