package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicSummarizer calls the Messages API.
type AnthropicSummarizer struct {
	client      anthropic.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// NewAnthropicSummarizer creates an Anthropic Messages summarizer.
func NewAnthropicSummarizer(config ProviderConfig) *AnthropicSummarizer {
	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.Endpoint != "" {
		options = append(options, option.WithBaseURL(config.Endpoint))
	}

	model := config.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicSummarizer{
		client:      anthropic.NewClient(options...),
		apiKey:      config.APIKey,
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
	}
}

func (s *AnthropicSummarizer) Name() string { return ProviderAnthropic }

func (s *AnthropicSummarizer) Validate() error {
	if s.apiKey == "" {
		return fmt.Errorf("api key is required")
	}
	return nil
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, request Request) (*Result, error) {
	request = request.withDefaults()
	if strings.TrimSpace(request.Text) == "" {
		return nil, ErrEmptyText
	}

	maxTokens := request.MaxTokens
	if s.maxTokens > 0 && s.maxTokens < maxTokens {
		maxTokens = s.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: buildSystemPrompt(request)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(request))),
		},
	}
	temperature := request.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message failed: %w", err)
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	inputTokens := int(message.Usage.InputTokens)
	outputTokens := int(message.Usage.OutputTokens)
	return &Result{
		Summary:  strings.TrimSpace(builder.String()),
		Provider: ProviderAnthropic,
		Model:    string(message.Model),
		Usage: TokenUsage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	}, nil
}
