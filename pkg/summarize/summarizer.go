// Package summarize provides article summarization behind a provider interface.
// The extractive provider works offline; the OpenAI (and OpenAI-compatible, such as
// Ollama) and Anthropic providers call hosted models.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderNotFound is returned when no summarizer is registered under a name.
	ErrProviderNotFound = errors.New("summarize: provider not found")

	// ErrEmptyText is returned when there is nothing to summarize.
	ErrEmptyText = errors.New("summarize: empty text")
)

// Provider names.
const (
	ProviderExtractive = "extractive"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderAnthropic  = "anthropic"
)

// Summarizer is implemented by every provider.
type Summarizer interface {
	// Name returns the provider identifier.
	Name() string

	// Summarize condenses the request text.
	Summarize(ctx context.Context, request Request) (*Result, error)

	// Validate checks that the provider is configured.
	Validate() error
}

// Request is one summarization job.
type Request struct {
	// Title labels the text, e.g. "Article 35 - Data protection impact assessment".
	Title string `json:"title,omitempty"`
	// Text is the plain text to summarize.
	Text string `json:"text"`
	// Context holds supporting passages, such as the recitals mapped to an article.
	Context []string `json:"context,omitempty"`
	// MaxSentences bounds extractive output. Default: 3.
	MaxSentences int `json:"max_sentences,omitempty"`
	// MaxTokens bounds generated output. Default: 512.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Temperature for generative providers.
	Temperature float64 `json:"temperature,omitempty"`
}

// Result is a produced summary.
type Result struct {
	Summary  string     `json:"summary"`
	Provider string     `json:"provider"`
	Model    string     `json:"model,omitempty"`
	Usage    TokenUsage `json:"usage"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

const (
	defaultMaxSentences = 3
	defaultMaxTokens    = 512
)

func (request Request) withDefaults() Request {
	if request.MaxSentences <= 0 {
		request.MaxSentences = defaultMaxSentences
	}
	if request.MaxTokens <= 0 {
		request.MaxTokens = defaultMaxTokens
	}
	return request
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Endpoint    string
	MaxTokens   int
	Temperature float64
}

// New constructs the provider named in config. An empty provider means extractive.
func New(config ProviderConfig) (Summarizer, error) {
	var summarizer Summarizer
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", ProviderExtractive:
		summarizer = NewFrequencySummarizer()
	case ProviderOpenAI:
		summarizer = NewOpenAISummarizer(config)
	case ProviderOllama:
		if config.Endpoint == "" {
			config.Endpoint = DefaultOllamaEndpoint
		}
		if config.Model == "" {
			config.Model = DefaultOllamaModel
		}
		summarizer = NewOpenAISummarizer(config).withName(ProviderOllama)
	case ProviderAnthropic:
		summarizer = NewAnthropicSummarizer(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, config.Provider)
	}

	if err := summarizer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s configuration: %w", summarizer.Name(), err)
	}
	return summarizer, nil
}
