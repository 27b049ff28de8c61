package suite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/qa-eval/internal/store"
)

const validSuiteYAML = `
suite: geography basics
system_prompt: Answer concisely.
contexts:
  - id: capitals
    text: European capitals reference.
cases:
  - id: france
    question: What is the capital of France?
    expected: Paris
  - question_audio: audio/germany.wav
    expected: Berlin
`

func writeSuiteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeSuiteFile(t, "geo.yaml", validSuiteYAML)

	f, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if f.Suite != "geography basics" {
		t.Fatalf("suite: got %q", f.Suite)
	}
	if f.SystemPrompt != "Answer concisely." {
		t.Fatalf("system prompt: got %q", f.SystemPrompt)
	}
	if len(f.Contexts) != 1 || f.Contexts[0].Text != "European capitals reference." {
		t.Fatalf("contexts: got %+v", f.Contexts)
	}
	if len(f.Cases) != 2 {
		t.Fatalf("cases: got %d want 2", len(f.Cases))
	}
	if f.Cases[1].QuestionAudio != "audio/germany.wav" {
		t.Fatalf("audio question: got %q", f.Cases[1].QuestionAudio)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadFromFile: expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*File)
		wantErr string
	}{
		{"valid", func(f *File) {}, ""},
		{"missing name", func(f *File) { f.Suite = " " }, "missing suite name"},
		{"no cases", func(f *File) { f.Cases = nil }, "no cases"},
		{"empty context", func(f *File) { f.Contexts = []ContextSpec{{}} }, "neither text nor file"},
		{"no question", func(f *File) { f.Cases[0].Question = "" }, "missing question"},
		{
			"two modalities",
			func(f *File) { f.Cases[0].QuestionAudio = "q.wav" },
			"more than one question modality",
		},
		{"no expected", func(f *File) { f.Cases[0].Expected = "" }, "missing expected answer"},
		{
			"duplicate ids",
			func(f *File) { f.Cases[1].ID = "france" },
			"duplicate id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{
				Suite:    "geo",
				Contexts: []ContextSpec{{Text: "ref"}},
				Cases: []CaseSpec{
					{ID: "france", Question: "capital of France?", Expected: "Paris"},
					{Question: "capital of Germany?", Expected: "Berlin"},
				},
			}
			tt.mutate(f)
			err := Validate(f)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate: got %v want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.yaml": strings.Replace(validSuiteYAML, "geography basics", "suite b", 1),
		"a.yml":  strings.Replace(validSuiteYAML, "geography basics", "suite a", 1),
		"c.txt":  "not yaml",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	suites, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if len(suites) != 2 {
		t.Fatalf("suites: got %d want 2", len(suites))
	}
	if suites[0].Suite != "suite a" || suites[1].Suite != "suite b" {
		t.Fatalf("order: got %q, %q", suites[0].Suite, suites[1].Suite)
	}
}

type recordingSuiteWriter struct {
	suites []*store.TestSuite
	cases  []*store.TestCase
	docs   []*store.ContextDocument
}

func (r *recordingSuiteWriter) SaveSuite(ctx context.Context, s *store.TestSuite) error {
	r.suites = append(r.suites, s)
	return nil
}

func (r *recordingSuiteWriter) SaveCase(ctx context.Context, tc *store.TestCase) error {
	r.cases = append(r.cases, tc)
	return nil
}

func (r *recordingSuiteWriter) SaveDocument(ctx context.Context, d *store.ContextDocument) error {
	r.docs = append(r.docs, d)
	return nil
}

func TestImport(t *testing.T) {
	f := &File{
		Suite:        "geo",
		SystemPrompt: "Answer concisely.",
		Contexts:     []ContextSpec{{ID: "capitals", Text: "ref"}},
		Cases: []CaseSpec{
			{ID: "france", Question: "capital of France?", Expected: "Paris"},
			{QuestionImage: "maps/de.png", Expected: "Berlin"},
		},
	}
	w := &recordingSuiteWriter{}

	suite, err := f.Import(context.Background(), w)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if suite.ID == "" || suite.Name != "geo" {
		t.Fatalf("suite: got %+v", suite)
	}
	if len(w.suites) != 1 || len(w.docs) != 1 || len(w.cases) != 2 {
		t.Fatalf("writes: suites=%d docs=%d cases=%d", len(w.suites), len(w.docs), len(w.cases))
	}
	if w.docs[0].ID != "capitals" || w.docs[0].SuiteID != suite.ID {
		t.Fatalf("doc: got %+v", w.docs[0])
	}
	if w.cases[0].ID != "france" {
		t.Fatalf("case id: got %q want france", w.cases[0].ID)
	}
	if w.cases[1].ID == "" {
		t.Fatal("generated case id: got empty")
	}
	if w.cases[1].QuestionImagePath != "maps/de.png" {
		t.Fatalf("image path: got %q", w.cases[1].QuestionImagePath)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	f := &File{Suite: "geo"}
	if _, err := f.Import(context.Background(), &recordingSuiteWriter{}); err == nil {
		t.Fatal("Import: expected validation error")
	}
}
