package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of *openai.Client used by OpenAI.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI implements Generator using the chat completions API.
// Any OpenAI-compatible server works when Config.BaseURL points at it.
type OpenAI struct {
	client ChatCompleter
	cfg    Config
}

// OpenAIOption configures the underlying go-openai client.
type OpenAIOption func(*openai.ClientConfig)

// WithHTTPClient sends requests through hc.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// NewOpenAI builds a client from cfg.
func NewOpenAI(cfg Config, opts ...OpenAIOption) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	return NewOpenAIWithClient(openai.NewClientWithConfig(clientCfg), cfg)
}

// NewOpenAIWithClient wraps an existing chat completion client.
func NewOpenAIWithClient(client ChatCompleter, cfg Config) (*OpenAI, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client is required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	if cfg.BodyMaxTokens <= 0 {
		cfg.BodyMaxTokens = 500
	}
	if cfg.SubjectMaxTokens <= 0 {
		cfg.SubjectMaxTokens = 50
	}
	return &OpenAI{client: client, cfg: cfg}, nil
}

// GenerateBody asks for a plain-text email body.
func (g *OpenAI) GenerateBody(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: bodySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(bodyUserPrompt, prompt)},
		},
		MaxTokens:   g.cfg.BodyMaxTokens,
		Temperature: g.cfg.Temperature,
	})
}

// GenerateSubject asks for a subject line under 60 characters.
func (g *OpenAI) GenerateSubject(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: subjectSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(subjectUserPrompt, prompt)},
		},
		MaxTokens:   g.cfg.SubjectMaxTokens,
		Temperature: g.cfg.Temperature,
	})
}

func (g *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", errors.Join(ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

var _ Generator = (*OpenAI)(nil)
