// Package generator drafts test suites with an LLM: given a topic and
// optional reference material, it produces question/expected-answer cases
// ready to import.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/suite"
)

const (
	defaultNumCases   = 5
	generateMaxTokens = 4096
)

// Generator generates test suites using an LLM.
type Generator struct {
	Registry *llm.Registry
	// Model is a "<provider>:<model-id>" identifier.
	Model string
}

// Request describes the suite to generate.
type Request struct {
	Topic    string
	Context  string // optional reference material the questions should draw on
	NumCases int
}

var generateTmpl = template.Must(template.New("generate").Parse(`You are building a question-answering evaluation suite.

## Topic
{{.Topic}}
{{if .Context}}
## Reference Material
<context>
{{.Context}}
</context>
{{end}}
## Your Task
Generate {{.NumCases}} diverse question/answer pairs about the topic{{if .Context}}, grounded in the reference material{{end}}:
- factual questions with short, unambiguous answers
- at least one question about an edge case or common misconception
- answers must be concise reference answers, not explanations

## Output Format
Return a JSON object with this structure:
{
  "suite": "short suite name",
  "system_prompt": "system prompt the evaluated model should run with",
  "cases": [
    {"question": "the question text", "expected": "the reference answer"}
  ]
}

IMPORTANT: Return ONLY valid JSON, no markdown code blocks or extra text.`))

type generateData struct {
	Topic    string
	Context  string
	NumCases int
}

type generatedCase struct {
	Question string `json:"question"`
	Expected string `json:"expected"`
}

type generatedSuite struct {
	Suite        string          `json:"suite"`
	SystemPrompt string          `json:"system_prompt"`
	Cases        []generatedCase `json:"cases"`
}

// Generate produces a validated suite definition for the request.
func (g *Generator) Generate(ctx context.Context, req *Request) (*suite.File, error) {
	if g == nil || g.Registry == nil {
		return nil, errors.New("generator: nil registry")
	}
	if req == nil {
		return nil, errors.New("generator: nil request")
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, errors.New("generator: empty topic")
	}

	provider, model, err := g.Registry.Resolve(g.Model)
	if err != nil {
		return nil, fmt.Errorf("generator: resolve model: %w", err)
	}

	numCases := req.NumCases
	if numCases <= 0 {
		numCases = defaultNumCases
	}

	var prompt bytes.Buffer
	if err := generateTmpl.Execute(&prompt, generateData{
		Topic:    topic,
		Context:  strings.TrimSpace(req.Context),
		NumCases: numCases,
	}); err != nil {
		return nil, fmt.Errorf("generator: render prompt: %w", err)
	}

	resp, err := provider.Complete(ctx, &llm.Request{
		Model:     model,
		Messages:  []llm.Message{{Role: "user", Content: prompt.String()}},
		MaxTokens: generateMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: generate cases: %w", err)
	}

	var out generatedSuite
	if err := llm.ParseJSON(resp.Text, &out); err != nil {
		return nil, fmt.Errorf("generator: parse response: %w", err)
	}

	f := &suite.File{
		Suite:        strings.TrimSpace(out.Suite),
		SystemPrompt: strings.TrimSpace(out.SystemPrompt),
	}
	if f.Suite == "" {
		f.Suite = topic
	}
	for _, c := range out.Cases {
		q := strings.TrimSpace(c.Question)
		a := strings.TrimSpace(c.Expected)
		if q == "" || a == "" {
			continue
		}
		f.Cases = append(f.Cases, suite.CaseSpec{Question: q, Expected: a})
	}

	if err := suite.Validate(f); err != nil {
		return nil, fmt.Errorf("generator: generated suite invalid: %w", err)
	}
	return f, nil
}
