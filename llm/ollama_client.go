package llm

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// OllamaClient talks to a local Ollama daemon. Useful for offline development
// and as a tool selector on machines without API keys.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(model string) LLMClient {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
		return nil
	}

	return &OllamaClient{
		client: client,
		model:  model,
	}
}

func (c *OllamaClient) Capabilities() Capability {
	return NativeToolCalling
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.chat(ctx, messages, callback, nil, opts...)
}

func (c *OllamaClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	return c.chat(ctx, messages, contentCallback, toolCallback, opts...)
}

func (c *OllamaClient) chat(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}

	for _, opt := range opts {
		opt(&settings)
	}

	apiMsgs := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		apiMsgs = append(apiMsgs, api.Message{Role: "system", Content: settings.system})
	}
	for _, m := range messages {
		content := m.Content
		if m.IsToolResult {
			content = "Tool result:\n" + content
		}
		apiMsgs = append(apiMsgs, api.Message{Role: m.Role, Content: content})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: apiMsgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if toolCallback != nil && len(settings.tools) > 0 {
		req.Tools = api.Tools(settings.tools)
	}

	var toolCalls []api.ToolCall
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			if err := contentCallback(resp.Message.Content); err != nil {
				return err
			}
		}
		toolCalls = append(toolCalls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama chat failed: %w", err)
	}

	if toolCallback != nil && len(toolCalls) > 0 {
		return toolCallback(toolCalls)
	}
	return nil
}
