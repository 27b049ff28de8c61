package llm

import "context"

// Provider generates text for a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Embedder is an optional capability for providers that can produce embedding
// vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// StructuredCompleter is an optional capability for providers that support
// schema-constrained generation. The response text is guaranteed to be a JSON
// document conforming to the schema.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, req *Request, schema *ResponseSchema) (*Response, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int // provider-specific; ignored where unsupported
}

// ResponseSchema names a JSON schema for structured generation.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	Text       string
	StopReason string
	Usage      Usage
}
