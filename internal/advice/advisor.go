// Package advice generates an optional human-readable advisory note for
// non-SAFE verdicts. The note is produced AFTER resolution and is never
// consulted by the scoring pipeline; a failure here only costs the note.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/phisheye/phisheye/internal/model"
)

// Advisor wraps an OpenAI-compatible chat endpoint
type Advisor struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	maxTokens int
}

// New creates an advisor from config. Returns nil (disabled) when no provider
// is configured; callers treat a nil advisor as "no note".
func New(cfg model.AdviceConfig) (*Advisor, error) {
	if cfg.Provider == "" {
		return nil, nil
	}
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unsupported advice provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("advice provider %s requires an API key", cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	timeout := time.Duration(cfg.TimeoutS) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}

	return &Advisor{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     chatModel,
		timeout:   timeout,
		maxTokens: maxTokens,
	}, nil
}

// Note generates a short advisory paragraph for a resolved verdict.
func (a *Advisor) Note(ctx context.Context, v model.Verdict) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write brief, factual security advisories. You never change or second-guess the verdict you are given; you only explain what it means for the user.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(v),
			},
		},
		MaxTokens:   a.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("advice request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty advice response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt renders the advisory prompt for a verdict
func BuildPrompt(v model.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A URL scanner classified the following URL.\n\n")
	fmt.Fprintf(&b, "URL: %s\nVerdict: %s\nConfidence: %.2f\n", v.URL, v.Label, v.Confidence)
	if len(v.Signals) > 0 {
		fmt.Fprintf(&b, "Triggered signals:\n")
		for _, s := range v.Signals {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	b.WriteString("\nIn 2-3 sentences, tell a non-technical user what this verdict means and what they should do. Do not dispute the verdict. Do not mention any URL other than the one above.")
	return b.String()
}
