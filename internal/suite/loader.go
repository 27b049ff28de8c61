// Package suite loads test-suite definitions from YAML files and imports them
// into the store.
package suite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/stellarlinkco/qa-eval/internal/store"
)

// File is the YAML shape of one suite definition.
type File struct {
	Suite        string        `yaml:"suite"`
	SystemPrompt string        `yaml:"system_prompt,omitempty"`
	Contexts     []ContextSpec `yaml:"contexts,omitempty"`
	Cases        []CaseSpec    `yaml:"cases"`
}

// ContextSpec attaches background material to the suite. Either inline text
// or a file path.
type ContextSpec struct {
	ID   string `yaml:"id,omitempty"`
	Text string `yaml:"text,omitempty"`
	File string `yaml:"file,omitempty"`
}

// CaseSpec is one question/expected-answer pair. Exactly one question field
// must be set.
type CaseSpec struct {
	ID            string `yaml:"id,omitempty"`
	Question      string `yaml:"question,omitempty"`
	QuestionAudio string `yaml:"question_audio,omitempty"`
	QuestionImage string `yaml:"question_image,omitempty"`
	Expected      string `yaml:"expected"`
}

// LoadFromFile loads and validates a suite definition from a YAML file.
func LoadFromFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("suite: read %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("suite: parse %q: %w", path, err)
	}
	if err := Validate(&f); err != nil {
		return nil, fmt.Errorf("suite: validate %q: %w", path, err)
	}

	return &f, nil
}

// LoadFromDir loads and validates all suite definitions from a directory.
func LoadFromDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("suite: read dir %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	out := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Validate checks a suite definition for consistency.
func Validate(f *File) error {
	if f == nil {
		return fmt.Errorf("nil suite")
	}
	if strings.TrimSpace(f.Suite) == "" {
		return fmt.Errorf("suite: missing suite name")
	}
	if len(f.Cases) == 0 {
		return fmt.Errorf("suite: no cases")
	}

	for i, ctx := range f.Contexts {
		if strings.TrimSpace(ctx.Text) == "" && strings.TrimSpace(ctx.File) == "" {
			return fmt.Errorf("contexts[%d]: neither text nor file", i)
		}
	}

	seenIDs := make(map[string]struct{}, len(f.Cases))
	for i, c := range f.Cases {
		if id := strings.TrimSpace(c.ID); id != "" {
			if _, ok := seenIDs[id]; ok {
				return fmt.Errorf("cases[%d] (%s): duplicate id", i, id)
			}
			seenIDs[id] = struct{}{}
		}

		set := 0
		for _, q := range []string{c.Question, c.QuestionAudio, c.QuestionImage} {
			if strings.TrimSpace(q) != "" {
				set++
			}
		}
		if set == 0 {
			return fmt.Errorf("cases[%d]: missing question", i)
		}
		if set > 1 {
			return fmt.Errorf("cases[%d]: more than one question modality", i)
		}
		if strings.TrimSpace(c.Expected) == "" {
			return fmt.Errorf("cases[%d]: missing expected answer", i)
		}
	}
	return nil
}

// Import persists a suite definition. Missing IDs are generated.
func (f *File) Import(ctx context.Context, st store.SuiteWriter) (*store.TestSuite, error) {
	if f == nil {
		return nil, fmt.Errorf("suite: nil suite")
	}
	if st == nil {
		return nil, fmt.Errorf("suite: nil store")
	}
	if err := Validate(f); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	suite := &store.TestSuite{
		ID:           uuid.NewString(),
		Name:         f.Suite,
		SystemPrompt: f.SystemPrompt,
		CreatedAt:    now,
	}
	if err := st.SaveSuite(ctx, suite); err != nil {
		return nil, fmt.Errorf("suite: save suite: %w", err)
	}

	for i, spec := range f.Contexts {
		doc := &store.ContextDocument{
			ID:       orGenerated(spec.ID),
			SuiteID:  suite.ID,
			Text:     spec.Text,
			FilePath: spec.File,
		}
		if err := st.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("suite: save context %d: %w", i, err)
		}
	}

	for i, spec := range f.Cases {
		tc := &store.TestCase{
			ID:                orGenerated(spec.ID),
			SuiteID:           suite.ID,
			QuestionText:      spec.Question,
			QuestionAudioPath: spec.QuestionAudio,
			QuestionImagePath: spec.QuestionImage,
			ExpectedAnswer:    spec.Expected,
			CreatedAt:         now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := st.SaveCase(ctx, tc); err != nil {
			return nil, fmt.Errorf("suite: save case %d: %w", i, err)
		}
	}

	return suite, nil
}

func orGenerated(id string) string {
	if v := strings.TrimSpace(id); v != "" {
		return v
	}
	return uuid.NewString()
}
