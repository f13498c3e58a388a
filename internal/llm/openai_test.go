package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIProvider_Brief_Success(t *testing.T) {
	server := chatServer(t, "Ownership reached 49%. Source: https://example.org/findex.")

	provider, err := NewOpenAIProvider(Config{
		APIKey:        "test-key",
		BaseURL:       server.URL,
		Model:         "gpt-4o-mini",
		Timeout:       5,
		StrictSources: true,
	})
	require.NoError(t, err)

	resp, err := provider.Brief(context.Background(), BriefRequest{
		Report:     model.Report{Subject: "Test"},
		SourceURLs: []string{"https://example.org/findex"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ownership reached 49%. Source: https://example.org/findex.", resp.Text)
	assert.Equal(t, []string{"https://example.org/findex"}, resp.CitedURLs)
	assert.Equal(t, 100, resp.TokensUsed)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAIProvider_Brief_CitationLeak(t *testing.T) {
	server := chatServer(t, "See https://made-up.example.com/report")

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, StrictSources: true})
	require.NoError(t, err)

	_, err = provider.Brief(context.Background(), BriefRequest{SourceURLs: []string{"https://example.org/findex"}})
	assert.True(t, errors.Is(err, ErrCitationLeak))
}

func TestOpenAIProvider_Brief_LenientSources(t *testing.T) {
	server := chatServer(t, "See https://made-up.example.com/report")

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := provider.Brief(context.Background(), BriefRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://made-up.example.com/report"}, resp.CitedURLs)
}

func TestOpenAIProvider_Brief_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	require.NoError(t, err)

	_, err = provider.Brief(context.Background(), BriefRequest{})
	assert.Error(t, err)
}

func TestOpenAIProvider_Brief_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = provider.Brief(ctx, BriefRequest{})
	assert.Error(t, err)
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"object": "list", "data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.True(t, provider.IsAvailable(context.Background()))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewProvider(Config{Provider: "openai"})
	assert.Error(t, err, "API key is required")

	p, err = NewProvider(Config{Provider: "Ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewProvider(Config{Provider: "watson"})
	assert.Error(t, err)
}

func TestExtractURLs(t *testing.T) {
	got := extractURLs("See (https://a.example/x), https://a.example/x. and [https://b.example/y]")
	assert.Equal(t, []string{"https://a.example/x", "https://b.example/y"}, got)
}

func TestBuildPrompt(t *testing.T) {
	report := model.Report{
		Overview: &model.Overview{
			AccountOwnership: model.Headline{Label: "Account Ownership", Value: 49, Year: 2024, GrowthRate: 6.5, GrowthDefined: true},
			MobileMoney:      model.Headline{Label: "Mobile Money Accounts", Value: 9.45, Fallback: true},
			Events:           3,
		},
		Forecasts: []model.IndicatorForecast{
			{Indicator: "Account Ownership", Available: true, Forecast: []model.YearValue{{Year: 2025, Value: 52.1}}},
			{Indicator: "Mobile Money Accounts", Reason: "insufficient history"},
		},
		Projection: &model.Projection{Scenario: "Base", Available: true, Projected: 57.5, Target: 60, Gap: -2.5},
	}

	prompt := BuildPrompt(report, []string{"https://example.org/findex"})

	for _, want := range []string{
		"https://example.org/findex",
		"Account Ownership: 49.0% (2024)",
		"growth since previous observation: +6.5%",
		"[default value, no observations]",
		"2025=52.1%",
		"Forecast for Mobile Money Accounts unavailable: insufficient history",
		"gap -2.5",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.Contains(t, BuildPrompt(model.Report{}, nil), "(No source URLs available)")
}

func TestJoinURLs_Truncates(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = "https://example.org/" + strings.Repeat("x", i+1)
	}
	assert.Contains(t, joinURLs(urls), "... and 5 more URLs")
}
