// Package anthropicllm summarizes text through the Anthropic messages API.
package anthropicllm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mdnotes/internal/ports"
)

const requestTimeout = 120 * time.Second

type Adapter struct {
	client anthropic.Client
	model  string
}

func New(apiKey, model string) *Adapter {
	if model == "" {
		model = "claude-3-haiku-20240307"
	}
	return &Adapter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *Adapter) Summarize(ctx context.Context, system, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msg, err := a.client.Messages.New(reqCtx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   2000,
		Temperature: anthropic.Float(0.3),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("anthropic returned empty content (model=%s)", a.model)
	}
	return out, nil
}

func (a *Adapter) Name() string { return "anthropic" }

var _ ports.Summarizer = (*Adapter)(nil)
