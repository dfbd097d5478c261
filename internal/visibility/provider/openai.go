package provider

import (
	"context"
	"fmt"

	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/visibility/domain"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// chatProvider asks a single question against any OpenAI-compatible
// chat completion endpoint and returns the first choice's text.
type chatProvider struct {
	platform domain.Platform
	client   openai.Client
	model    shared.ChatModel
}

func newOpenAI(cfg config.Config) Provider {
	return &chatProvider{
		platform: domain.PlatformOpenAI,
		client:   openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:    shared.ChatModel(cfg.OpenAIModel),
	}
}

// Perplexity exposes an OpenAI-compatible API, so the same client works
// with a different base URL.
func newPerplexity(cfg config.Config) Provider {
	return &chatProvider{
		platform: domain.PlatformPerplexity,
		client: openai.NewClient(
			option.WithBaseURL(cfg.PerplexityBase),
			option.WithAPIKey(cfg.PerplexityAPIKey),
		),
		model: shared.ChatModel(cfg.PerplexityModel),
	}
}

func (p *chatProvider) Platform() domain.Platform {
	return p.platform
}

func (p *chatProvider) Ask(ctx context.Context, query string) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(query),
		},
		Model: p.model,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrProvider, p.platform, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: empty completion", ErrProvider, p.platform)
	}
	return completion.Choices[0].Message.Content, nil
}
