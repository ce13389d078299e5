package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Generator sends a prompt to a text model and returns its raw reply
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig selects and configures the model backend
type GenerationConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// NewGenerator builds the configured backend. The credential is checked here so a
// missing key never reaches the network.
func NewGenerator(ctx context.Context, cfg GenerationConfig) (Generator, func() error, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil, &PreconditionError{Message: fmt.Sprintf("no API key configured for provider %q", cfg.Provider)}
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg), func() error { return nil }, nil
	default:
		return nil, nil, &PreconditionError{Message: fmt.Sprintf("unknown generation provider: %s", cfg.Provider)}
	}
}

// GeminiGenerator calls Gemini in JSON response mode
type GeminiGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	timeout time.Duration
}

// NewGeminiGenerator connects to the Gemini API, or to cfg.BaseURL when set.
// opts are applied last.
func NewGeminiGenerator(ctx context.Context, cfg GenerationConfig, opts ...option.ClientOption) (*GeminiGenerator, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, &PreconditionError{Message: "creating Gemini client", Err: err}
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-2.5-flash"
	}
	model := client.GenerativeModel(name)
	if cfg.Temperature > 0 {
		model.SetTemperature(cfg.Temperature)
	}
	model.ResponseMIMEType = "application/json"

	return &GeminiGenerator{client: client, model: model, name: name, timeout: cfg.Timeout}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Debug("calling Gemini", "model", g.name, "prompt_chars", len(prompt))
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: errors.New("no candidates returned, possible safety filter")}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", &GenerationError{Provider: ProviderGemini, Err: errors.New("first candidate has no text parts")}
	}
	return b.String(), nil
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint with a JSON object response format
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

func NewOpenAIGenerator(cfg GenerationConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Debug("calling OpenAI", "model", g.model, "prompt_chars", len(prompt))
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", &GenerationError{Provider: ProviderOpenAI, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &GenerationError{Provider: ProviderOpenAI, Err: errors.New("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
