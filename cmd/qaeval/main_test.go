package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()
	if root.Use != "qaeval" {
		t.Fatalf("Use: got %q", root.Use)
	}
	if !root.SilenceErrors || !root.SilenceUsage {
		t.Fatal("root must silence errors and usage")
	}

	want := map[string]bool{"run": false, "serve": false, "import": false, "list": false}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("missing --config flag")
	}
}

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  type: memory\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	suitePath := filepath.Join(dir, "geo.yaml")
	suiteYAML := "suite: geo\ncases:\n  - question: capital of France?\n    expected: Paris\n"
	if err := os.WriteFile(suitePath, []byte(suiteYAML), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"import", suitePath, "--config", cfgPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), `imported suite "geo"`) {
		t.Fatalf("output: %q", out.String())
	}
}

func TestImportCommandMissingPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"import", filepath.Join(dir, "nope.yaml"), "--config", cfgPath})

	if err := root.Execute(); err == nil {
		t.Fatal("Execute: expected error for missing path")
	}
}

func TestListCommandEmpty(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"list", "--config", cfgPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "RUN") {
		t.Fatalf("output missing header: %q", out.String())
	}
}
