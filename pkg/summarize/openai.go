package summarize

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "llama3.2"
)

// OpenAISummarizer calls the chat completions API. With an Endpoint it targets any
// OpenAI-compatible server, such as Ollama.
type OpenAISummarizer struct {
	name        string
	client      *openai.Client
	apiKey      string
	endpoint    string
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAISummarizer creates an OpenAI chat-completions summarizer.
func NewOpenAISummarizer(config ProviderConfig) *OpenAISummarizer {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = openAIBaseURL(config.Endpoint)
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAISummarizer{
		name:        ProviderOpenAI,
		client:      openai.NewClientWithConfig(clientConfig),
		apiKey:      config.APIKey,
		endpoint:    config.Endpoint,
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
	}
}

func (s *OpenAISummarizer) withName(name string) *OpenAISummarizer {
	s.name = name
	return s
}

func (s *OpenAISummarizer) Name() string { return s.name }

// Validate requires an API key unless a custom endpoint is set.
func (s *OpenAISummarizer) Validate() error {
	if s.apiKey == "" && s.endpoint == "" {
		return fmt.Errorf("api key is required")
	}
	return nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, request Request) (*Result, error) {
	request = request.withDefaults()
	if strings.TrimSpace(request.Text) == "" {
		return nil, ErrEmptyText
	}

	maxTokens := request.MaxTokens
	if s.maxTokens > 0 && s.maxTokens < maxTokens {
		maxTokens = s.maxTokens
	}
	temperature := request.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	response, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(request)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(request)},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", s.name, err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", s.name)
	}

	model := response.Model
	if model == "" {
		model = s.model
	}
	return &Result{
		Summary:  strings.TrimSpace(response.Choices[0].Message.Content),
		Provider: s.name,
		Model:    model,
		Usage: TokenUsage{
			InputTokens:  response.Usage.PromptTokens,
			OutputTokens: response.Usage.CompletionTokens,
			TotalTokens:  response.Usage.TotalTokens,
		},
	}, nil
}

// openAIBaseURL appends /v1 to bare host endpoints.
func openAIBaseURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/v1") {
		return endpoint
	}
	return endpoint + "/v1"
}
