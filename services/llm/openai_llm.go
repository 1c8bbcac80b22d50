package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/jsonmend/pkg/logging"
)

const defaultModel = "gpt-4o-mini"

type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logging.Logger
}

// NewOpenAIClient builds a client from the process environment.
// A missing OPENAI_API_KEY is a fatal configuration error for the caller,
// not something to retry.
func NewOpenAIClient(log *logging.Logger) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY environment variable not set")
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
		log.Debug("OPENAI_MODEL not set, using default", "model", model)
	}
	log.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}, nil
}

// WithModel overrides the model chosen from the environment.
func (o *OpenAIClient) WithModel(model string) *OpenAIClient {
	if model != "" {
		o.model = model
	}
	return o
}

// Generate implements the LLMClient interface
func (o *OpenAIClient) Generate(ctx context.Context, system string, prompt string, params GenerationParams) (string, error) {
	o.log.Debug("Generating text via OpenAI", "model", o.model)
	if system == "" {
		system = "You are a helpful assistant."
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.log.Error("OpenAI API call failed", "error", err)
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.log.Warn("OpenAI returned no choices or empty content")
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	o.log.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
