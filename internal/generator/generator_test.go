package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stellarlinkco/qa-eval/internal/llm"
)

type stubProvider struct {
	name string
	text string
	err  error

	lastPrompt string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if len(req.Messages) > 0 {
		p.lastPrompt = req.Messages[0].Content
	}
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.text}, nil
}

func newTestGenerator(p *stubProvider) *Generator {
	reg := llm.NewRegistry()
	reg.Register(p)
	return &Generator{Registry: reg, Model: p.name + ":test-model"}
}

const validResponse = `{
	"suite": "European capitals",
	"system_prompt": "Answer concisely.",
	"cases": [
		{"question": "What is the capital of France?", "expected": "Paris"},
		{"question": "What is the capital of Germany?", "expected": "Berlin"},
		{"question": " ", "expected": "dropped"}
	]
}`

func TestGenerate(t *testing.T) {
	p := &stubProvider{name: "openai", text: validResponse}
	g := newTestGenerator(p)

	f, err := g.Generate(context.Background(), &Request{
		Topic:    "European capitals",
		Context:  "A list of capitals.",
		NumCases: 2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.Suite != "European capitals" {
		t.Fatalf("suite: got %q", f.Suite)
	}
	if f.SystemPrompt != "Answer concisely." {
		t.Fatalf("system prompt: got %q", f.SystemPrompt)
	}
	if len(f.Cases) != 2 {
		t.Fatalf("cases: got %d want 2 (blank case dropped)", len(f.Cases))
	}
	if f.Cases[0].Question != "What is the capital of France?" || f.Cases[0].Expected != "Paris" {
		t.Fatalf("first case: %+v", f.Cases[0])
	}
	if !strings.Contains(p.lastPrompt, "Generate 2 diverse") {
		t.Fatalf("prompt missing case count: %q", p.lastPrompt)
	}
	if !strings.Contains(p.lastPrompt, "A list of capitals.") {
		t.Fatalf("prompt missing context: %q", p.lastPrompt)
	}
}

func TestGenerateFencedJSON(t *testing.T) {
	p := &stubProvider{name: "openai", text: "```json\n" + validResponse + "\n```"}
	g := newTestGenerator(p)

	f, err := g.Generate(context.Background(), &Request{Topic: "capitals"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(f.Cases) != 2 {
		t.Fatalf("cases: got %d want 2", len(f.Cases))
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generator
		req  *Request
	}{
		{"nil registry", &Generator{}, &Request{Topic: "x"}},
		{"nil request", newTestGenerator(&stubProvider{name: "openai"}), nil},
		{"empty topic", newTestGenerator(&stubProvider{name: "openai"}), &Request{}},
		{
			"provider failure",
			newTestGenerator(&stubProvider{name: "openai", err: errors.New("timeout")}),
			&Request{Topic: "x"},
		},
		{
			"malformed json",
			newTestGenerator(&stubProvider{name: "openai", text: "not json"}),
			&Request{Topic: "x"},
		},
		{
			"no usable cases",
			newTestGenerator(&stubProvider{name: "openai", text: `{"suite": "s", "cases": []}`}),
			&Request{Topic: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.gen.Generate(context.Background(), tt.req); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGenerateUnresolvableModel(t *testing.T) {
	g := &Generator{Registry: llm.NewRegistry(), Model: "nosuch:model"}
	if _, err := g.Generate(context.Background(), &Request{Topic: "x"}); err == nil {
		t.Fatal("expected error for unresolvable model")
	}
}
