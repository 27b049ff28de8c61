package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultTranscriptionModel = openai.Whisper1
	defaultAnswerModel        = "gpt-4o"
)

// OpenAITransport answers questions over the OpenAI audio and chat APIs.
// Audio questions are transcribed first (Whisper), then answered as text, so
// an audio question always produces a text answer and an input transcript.
type OpenAITransport struct {
	client *openai.Client
	model  string
	cfg    Config
}

func NewOpenAITransport(apiKey string, baseURL string, model string, cfg Config) *OpenAITransport {
	c := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultAnswerModel
	}
	if strings.TrimSpace(cfg.TranscriptionModel) == "" {
		cfg.TranscriptionModel = defaultTranscriptionModel
	}

	return &OpenAITransport{
		client: openai.NewClientWithConfig(c),
		model:  m,
		cfg:    cfg,
	}
}

func (t *OpenAITransport) Generate(ctx context.Context, req *SessionRequest) (*SessionResult, error) {
	if t == nil || t.client == nil {
		return nil, errors.New("realtime: nil transport")
	}
	if ctx == nil {
		return nil, errors.New("realtime: nil context")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	out := &SessionResult{}
	question := req.QuestionText

	if req.QuestionAudioPath != "" {
		transcript, err := t.transcribe(ctx, req.QuestionAudioPath)
		if err != nil {
			return nil, fmt.Errorf("realtime: transcribe %q: %w", req.QuestionAudioPath, err)
		}
		question = transcript
		out.InputTranscript = transcript
	}

	answer, err := t.answer(ctx, req.SystemPrompt, req.Context, question)
	if err != nil {
		return nil, fmt.Errorf("realtime: generate answer: %w", err)
	}
	out.Answer = answer
	return out, nil
}

// transcribe runs under the session-setup timeout.
func (t *OpenAITransport) transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := t.phaseContext(ctx, t.cfg.ConnectTimeout)
	defer cancel()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.cfg.TranscriptionModel,
		FilePath: audioPath,
	})
	if err != nil {
		return "", err
	}
	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return "", errors.New("empty transcript")
	}
	return transcript, nil
}

// answer runs under the shorter response-collection timeout.
func (t *OpenAITransport) answer(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
	ctx, cancel := t.phaseContext(ctx, t.cfg.ResponseTimeout)
	defer cancel()

	system := strings.TrimSpace(systemPrompt)
	if contextText != "" {
		system = strings.TrimSpace(system + "\n\nContext:\n" + contextText)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    t.model,
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (t *OpenAITransport) phaseContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
