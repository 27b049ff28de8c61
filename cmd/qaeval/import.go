package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/qa-eval/internal/store"
	"github.com/stellarlinkco/qa-eval/internal/suite"
)

func newImportCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import test suites from a YAML file or directory",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return importSuites(cmd, st, args[0])
		},
	}
	return cmd
}

func importSuites(cmd *cobra.Command, st *cliState, path string) error {
	if st == nil || st.cfg == nil {
		return errors.New("import: missing config (internal error)")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	var files []*suite.File
	if info.IsDir() {
		files, err = suite.LoadFromDir(path)
	} else {
		var f *suite.File
		f, err = suite.LoadFromFile(path)
		if f != nil {
			files = []*suite.File{f}
		}
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("import: no suite files in %q", path)
	}

	db, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	for _, f := range files {
		created, err := f.Import(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported suite %q (%s): %d cases, %d contexts\n",
			created.Name, created.ID, len(f.Cases), len(f.Contexts))
	}
	return nil
}
