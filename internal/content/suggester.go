// Package content generates, applies and checks page copy refreshes.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// MissingKeyMessage is returned in place of a suggestion when no API key is
// configured.
const MissingKeyMessage = "API key missing."

var ErrNoChoices = errors.New("completion returned no choices")

type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// StaticSuggester always answers with Text.
type StaticSuggester struct {
	Text string
}

func (s StaticSuggester) Suggest(context.Context, string) (string, error) {
	return s.Text, nil
}

// ChatSuggester talks to an OpenAI-compatible chat completions API.
type ChatSuggester struct {
	client    *openai.Client
	model     string
	apiKey    string
	maxTokens int
	logger    logging.Logger
}

func NewChatSuggester(cfg *config.ContentConfig, logger logging.Logger) *ChatSuggester {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return &ChatSuggester{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		apiKey:    key,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

func (s *ChatSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		s.logger.Error("OPENAI_API_KEY not set in environment")
		return MissingKeyMessage, nil
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	suggestion := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Info("content suggestion generated", logging.String("prompt", prompt))
	return suggestion, nil
}
