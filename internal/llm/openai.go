package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIEmbeddingModel = "text-embedding-3-small"

type OpenAIProvider struct {
	client         *openai.Client
	model          string
	embeddingModel string
}

func NewOpenAIProvider(apiKey string, baseURL string, model string, embeddingModel string) *OpenAIProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = "gpt-4o"
	}
	em := strings.TrimSpace(embeddingModel)
	if em == "" {
		em = defaultOpenAIEmbeddingModel
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(cfg),
		model:          m,
		embeddingModel: em,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	return p.complete(ctx, req, nil)
}

// CompleteStructured requests JSON output constrained by the given schema.
func (p *OpenAIProvider) CompleteStructured(ctx context.Context, req *Request, schema *ResponseSchema) (*Response, error) {
	if schema == nil {
		return nil, errors.New("llm: openai: nil schema")
	}
	return p.complete(ctx, req, schema)
}

func (p *OpenAIProvider) complete(ctx context.Context, req *Request, schema *ResponseSchema) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: openai: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: openai: nil request")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    normalizeOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	// TopK is not part of the OpenAI chat API and is dropped here.
	r := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   clampMaxTokens(req.MaxTokens),
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
	}

	if schema != nil {
		raw, err := json.Marshal(schema.Schema)
		if err != nil {
			return nil, fmt.Errorf("llm: openai: marshal schema: %w", err)
		}
		r.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: json.RawMessage(raw),
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: openai: empty choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Text:       choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Embed returns an embedding vector for the given text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: openai: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai: nil context")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("llm: openai: empty embedding input")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("llm: openai: create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("llm: openai: empty embedding response")
	}

	src := resp.Data[0].Embedding
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out, nil
}

func normalizeOpenAIRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant:
		return role
	default:
		return openai.ChatMessageRoleUser
	}
}

func clampMaxTokens(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}
