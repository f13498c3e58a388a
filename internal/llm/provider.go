// Package llm writes an optional narrative brief of a computed report with
// an OpenAI-compatible chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// ErrCitationLeak is returned when a reply cites a URL outside the allowlist
var ErrCitationLeak = errors.New("citation leak")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Brief generates a narrative of the report citing only allowed sources
	Brief(ctx context.Context, req BriefRequest) (*BriefResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// BriefRequest contains the input for a brief
type BriefRequest struct {
	// Report is the computed report; the brief never changes it
	Report model.Report

	// SourceURLs is the allowlist of URLs the model may cite, taken from the
	// dataset's source_url values
	SourceURLs []string

	// Prompt overrides BuildPrompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// BriefResponse contains the model's output
type BriefResponse struct {
	Text       string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string
	Timeout int // seconds

	// StrictSources rejects replies citing URLs outside the allowlist
	StrictSources bool

	MaxTokens int
}

// DefaultConfig returns the disabled configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       30,
		StrictSources: true,
		MaxTokens:     800,
	}
}

// BuildPrompt constructs the default prompt for a report
func BuildPrompt(report model.Report, sourceURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing a short briefing on %s for policy analysts.

RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. Use only the figures given below. Do not invent numbers or sources.
3. Forecasts are straight-line extrapolations; say so when you mention them.
4. If a section is unavailable, state that explicitly.

Figures:
`, subjectOrDefault(report.Subject), joinURLs(sourceURLs))

	if o := report.Overview; o != nil {
		fmt.Fprintf(&b, "- %s: %.1f%% (%d)%s\n", o.AccountOwnership.Label, o.AccountOwnership.Value, o.AccountOwnership.Year, fallbackNote(o.AccountOwnership))
		if o.AccountOwnership.GrowthDefined {
			fmt.Fprintf(&b, "  growth since previous observation: %+.1f%%\n", o.AccountOwnership.GrowthRate)
		}
		fmt.Fprintf(&b, "- %s: %.1f%%%s\n", o.MobileMoney.Label, o.MobileMoney.Value, fallbackNote(o.MobileMoney))
		fmt.Fprintf(&b, "- Events cataloged: %d, impact links: %d\n", o.Events, o.ImpactLinks)
	}

	for _, f := range report.Forecasts {
		if !f.Available {
			fmt.Fprintf(&b, "- Forecast for %s unavailable: %s\n", f.Indicator, f.Reason)
			continue
		}
		fmt.Fprintf(&b, "- Forecast for %s:", f.Indicator)
		for _, p := range f.Forecast {
			fmt.Fprintf(&b, " %d=%.1f%%", p.Year, p.Value)
		}
		b.WriteString("\n")
	}

	if p := report.Projection; p != nil {
		if p.Available {
			fmt.Fprintf(&b, "- %s scenario: %.1f%% projected against a %.0f%% target (gap %+.1f)\n", p.Scenario, p.Projected, p.Target, p.Gap)
		} else {
			fmt.Fprintf(&b, "- %s scenario unavailable: %s\n", p.Scenario, p.Reason)
		}
	}

	b.WriteString("\nWrite 3-4 sentences.")
	return b.String()
}

func subjectOrDefault(s string) string {
	if s == "" {
		return "financial inclusion in Ethiopia"
	}
	return s
}

func fallbackNote(h model.Headline) string {
	if h.Fallback {
		return " [default value, no observations]"
	}
	return ""
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No source URLs available)"
	}
	var b strings.Builder
	for i, url := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", url)
	}
	return b.String()
}
