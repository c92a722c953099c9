package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/coursepilot/coursepilot/llm"
	"github.com/coursepilot/coursepilot/schema"
	"github.com/coursepilot/coursepilot/tools"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// State labels one step of an exchange. An exchange walks
// AwaitingDecision -> (NoToolRequested | ToolRequested -> AwaitingFinal) -> Done.
type State string

const (
	StateAwaitingDecision State = "awaiting_decision"
	StateNoToolRequested  State = "no_tool_requested"
	StateToolRequested    State = "tool_requested"
	StateAwaitingFinal    State = "awaiting_final"
	StateDone             State = "done"
)

const (
	defaultMaxTokens   = 800
	defaultTemperature = 0.0
)

// Result is the outcome of one completed exchange. Trace records the states
// visited, in order, so each branch of the protocol stays observable.
type Result struct {
	Answer  string
	Sources []schema.Citation
	Trace   []State
}

// Orchestrator drives the two-pass generation protocol. Pass one advertises the
// registry's tool schemas and lets the model decide; if tools were requested
// their results are fed back in a second pass that advertises none, so the
// exchange is capped at two passes by construction.
type Orchestrator struct {
	client      llm.LLMClient
	registry    *tools.Registry
	maxTokens   int
	temperature float64
}

func NewOrchestrator(client llm.LLMClient, registry *tools.Registry) *Orchestrator {
	return &Orchestrator{
		client:      client,
		registry:    registry,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// GenerateAnswer runs one exchange: system prompt, bounded history and the
// current query go to the model along with the registry's schemas. Provider
// failures are fatal for the exchange; tool failures are converted into
// tool-result text and never abort it.
func (o *Orchestrator) GenerateAnswer(ctx context.Context, systemPrompt string, history []llm.Message, query string) (*Result, error) {
	result := &Result{Trace: []State{StateAwaitingDecision}}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: query})

	o.registry.ResetSources()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrGenerationFailed, err)
	}

	var firstText strings.Builder
	var toolCalls []api.ToolCall

	err := o.client.GenerateInferenceWithTools(
		ctx, messages,
		func(chunk string) error {
			firstText.WriteString(chunk)
			return nil
		},
		func(calls []api.ToolCall) error {
			toolCalls = append(toolCalls, calls...)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTools(o.registry.Schemas()),
		llm.WithMaxTokens(o.maxTokens),
		llm.WithTemperature(o.temperature),
	)
	if err != nil {
		logger.Error("first pass failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", schema.ErrGenerationFailed, err)
	}

	if len(toolCalls) == 0 {
		result.Trace = append(result.Trace, StateNoToolRequested, StateDone)
		result.Answer = firstText.String()
		return result, nil
	}

	result.Trace = append(result.Trace, StateToolRequested)
	messages = append(messages, llm.Message{Role: "assistant", Content: assistantToolTurn(firstText.String(), toolCalls)})

	for _, call := range toolCalls {
		text, err := o.registry.Invoke(ctx, call)
		if err != nil {
			logger.Error("tool invocation failed",
				zap.String("tool", call.Function.Name), zap.Error(err))
			text = fmt.Sprintf("Tool execution failed: %v", err)
		}
		messages = append(messages, llm.Message{Role: "user", Content: text, IsToolResult: true})
	}

	result.Trace = append(result.Trace, StateAwaitingFinal)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrGenerationFailed, err)
	}

	// No tools advertised here, so a second round of tool use cannot happen.
	var finalText strings.Builder
	err = o.client.GenerateInference(
		ctx, messages,
		func(chunk string) error {
			finalText.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithMaxTokens(o.maxTokens),
		llm.WithTemperature(o.temperature),
	)
	if err != nil {
		logger.Error("final pass failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", schema.ErrGenerationFailed, err)
	}

	result.Trace = append(result.Trace, StateDone)
	result.Answer = finalText.String()
	result.Sources = o.registry.LastSources()
	return result, nil
}

// assistantToolTurn renders the model's tool-use turn into flat message form so
// the second pass sees what was requested.
func assistantToolTurn(text string, calls []api.ToolCall) string {
	var b strings.Builder
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	for _, call := range calls {
		fmt.Fprintf(&b, "[Requested tool %s with arguments %v]\n", call.Function.Name, map[string]any(call.Function.Arguments))
	}
	return strings.TrimRight(b.String(), "\n")
}
