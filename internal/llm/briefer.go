package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Briefer attaches a narrative to computed reports when a provider is
// configured
type Briefer struct {
	provider Provider
	config   Config
	logger   *zap.Logger
}

// NewBriefer creates a briefer. With no provider configured the briefer is
// disabled and Brief returns nil, nil.
func NewBriefer(config Config, logger *zap.Logger) (*Briefer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return &Briefer{provider: provider, config: config, logger: logger}, nil
}

// NewBrieferWithProvider wraps an existing provider
func NewBrieferWithProvider(provider Provider, config Config, logger *zap.Logger) *Briefer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Briefer{provider: provider, config: config, logger: logger}
}

// IsEnabled reports whether a provider is configured
func (b *Briefer) IsEnabled() bool {
	return b != nil && b.provider != nil
}

// ProviderName returns the configured provider, or "" when disabled
func (b *Briefer) ProviderName() string {
	if !b.IsEnabled() {
		return ""
	}
	return b.provider.Name()
}

// Brief asks the provider for a narrative of report. The report itself is
// never modified.
func (b *Briefer) Brief(ctx context.Context, report model.Report, sourceURLs []string) (*model.Brief, error) {
	if !b.IsEnabled() {
		return nil, nil
	}

	b.logger.Debug("Requesting brief",
		zap.String("provider", b.provider.Name()),
		zap.Int("allowed_sources", len(sourceURLs)))

	resp, err := b.provider.Brief(ctx, BriefRequest{
		Report:     report,
		SourceURLs: sourceURLs,
		Model:      b.config.Model,
		MaxTokens:  b.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("brief: %w", err)
	}

	b.logger.Info("Brief generated",
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Int("citations", len(resp.CitedURLs)))

	return &model.Brief{
		Provider:  b.provider.Name(),
		Model:     resp.Model,
		Markdown:  resp.Text,
		CitedURLs: resp.CitedURLs,
	}, nil
}
