package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/visibility/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrProvider wraps every failed answer-engine call so the orchestrator
// can treat provider outages uniformly.
var ErrProvider = errors.New("provider_call_failed")

// Provider is the black-box "ask a question, get text back" capability
// of one answer engine.
type Provider interface {
	Platform() domain.Platform
	Ask(ctx context.Context, query string) (string, error)
}

// Registry holds the enabled providers in a fixed order so probe runs
// consume them deterministically.
type Registry struct {
	providers []Provider
}

func NewRegistry(cfg config.Config, log *zap.Logger) *Registry {
	providers := []Provider{}
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		providers = append(providers, newOpenAI(cfg))
	}
	if strings.TrimSpace(cfg.PerplexityAPIKey) != "" {
		providers = append(providers, newPerplexity(cfg))
	}
	if len(providers) == 0 {
		log.Named("visibility.provider").Warn("no answer-engine providers configured")
	}
	return &Registry{providers: providers}
}

// NewStaticRegistry wraps a fixed provider set, used in tests.
func NewStaticRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Providers() []Provider {
	return r.providers
}

// Pick returns the provider for the i-th probe of a run, cycling
// through the enabled set so every platform gets coverage.
func (r *Registry) Pick(i int) (Provider, bool) {
	if len(r.providers) == 0 {
		return nil, false
	}
	return r.providers[i%len(r.providers)], true
}

var Module = fx.Module("visibility.provider",
	fx.Provide(NewRegistry),
)
