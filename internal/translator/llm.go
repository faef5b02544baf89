package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/llm"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

const userMessageTemplate = "Translate the following text to %s:\n%s"

// llmClient adapts an OpenAI-compatible chat client to the single-entry
// Client contract.
type llmClient struct {
	client      *llm.Client
	temperature float64
}

// NewLLMClient returns a Client backed by chat completions.
func NewLLMClient(client *llm.Client, temperature float64) Client {
	return &llmClient{
		client:      client,
		temperature: temperature,
	}
}

func (c *llmClient) Translate(ctx context.Context, text, systemPrompt string, target lang.Language, model string) (string, bool) {
	opts := llm.NewChatCompletionOptions().
		WithSystemPrompt(systemPrompt).
		WithModel(model).
		WithTemperature(c.temperature)

	content, err := c.client.Complete(ctx, UserMessage(target, text), opts)
	if err != nil {
		log.Debug("translation request failed: %v", err)
		return "", false
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	return content, true
}

// UserMessage renders the user turn sent for one subtitle entry.
func UserMessage(target lang.Language, text string) string {
	return fmt.Sprintf(userMessageTemplate, target.String(), text)
}

// ListModels returns the models offered by lister, or an empty list when the
// server cannot be reached.
func ListModels(ctx context.Context, lister ModelLister) []string {
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn("Failed to list models: %v", err)
		return []string{}
	}
	return models
}
