package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/coursepilot/coursepilot/llm"
	"github.com/coursepilot/coursepilot/schema"
	"github.com/coursepilot/coursepilot/tools"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replays canned passes: pass one may emit text and tool calls,
// pass two emits text only.
type scriptedClient struct {
	firstText  string
	firstCalls []api.ToolCall
	firstErr   error

	finalText string
	finalErr  error

	toolPassMessages  []llm.Message
	finalPassMessages []llm.Message
	toolPassSettings  recordedSettings
	finalPassCount    int
}

type recordedSettings struct {
	system string
	tools  []api.Tool
}

func (c *scriptedClient) GenerateInference(ctx context.Context, messages []llm.Message, callback func(string) error, opts ...llm.LLMOption) error {
	c.finalPassCount++
	c.finalPassMessages = append([]llm.Message(nil), messages...)
	if c.finalErr != nil {
		return c.finalErr
	}
	return callback(c.finalText)
}

func (c *scriptedClient) GenerateInferenceWithTools(ctx context.Context, messages []llm.Message, contentCallback func(string) error, toolCallback func([]api.ToolCall) error, opts ...llm.LLMOption) error {
	c.toolPassMessages = append([]llm.Message(nil), messages...)
	c.toolPassSettings = settingsOf(opts)
	if c.firstErr != nil {
		return c.firstErr
	}
	if c.firstText != "" {
		if err := contentCallback(c.firstText); err != nil {
			return err
		}
	}
	if len(c.firstCalls) > 0 {
		return toolCallback(c.firstCalls)
	}
	return nil
}

func (c *scriptedClient) Capabilities() llm.Capability { return llm.NativeToolCalling }
func (c *scriptedClient) GetModel() string             { return "scripted" }

func settingsOf(opts []llm.LLMOption) recordedSettings {
	var s llm.LLMSettings
	for _, opt := range opts {
		opt(&s)
	}
	return recordedSettings{system: s.System(), tools: s.Tools()}
}

func searchCall(args api.ToolCallFunctionArguments) api.ToolCall {
	return api.ToolCall{Function: api.ToolCallFunction{Name: "search_course_content", Arguments: args}}
}

func newTestRegistry(t *testing.T, handler func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error)) (*tools.Registry, *int) {
	t.Helper()
	invocations := 0
	registry := tools.NewRegistry()
	tool := tools.NewMCPToolBuilder("search_course_content", "searches course content").
		StringParam("query", "what to look for", true).
		WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
			invocations++
			return handler(ctx, params)
		}).
		Build()
	require.NoError(t, registry.Register(tool))
	return registry, &invocations
}

func TestGenerateAnswer_NoToolRequested(t *testing.T) {
	// A general-knowledge question: the model answers directly and the tool
	// handler must never run.
	registry, invocations := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "should not run"}, nil
	})
	client := &scriptedClient{firstText: "Paris is the capital of France."}
	orch := NewOrchestrator(client, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "What is the capital of France?")

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, *invocations)
	assert.Zero(t, client.finalPassCount)
	assert.Equal(t, []State{StateAwaitingDecision, StateNoToolRequested, StateDone}, result.Trace)
}

func TestGenerateAnswer_ToolRequested(t *testing.T) {
	registry, invocations := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		assert.Equal(t, "closures", params["query"])
		return &schema.ToolResult{
			Text:    "[Go Basics - Lesson 2]\nClosures capture variables.",
			Sources: []schema.Citation{{CourseTitle: "Go Basics", LessonNumber: 2}},
		}, nil
	})
	client := &scriptedClient{
		firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "closures"})},
		finalText:  "Closures capture their enclosing variables.",
	}
	orch := NewOrchestrator(client, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "What do closures capture?")

	require.NoError(t, err)
	assert.Equal(t, "Closures capture their enclosing variables.", result.Answer)
	assert.Equal(t, 1, *invocations)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Go Basics", result.Sources[0].CourseTitle)
	assert.Equal(t, []State{StateAwaitingDecision, StateToolRequested, StateAwaitingFinal, StateDone}, result.Trace)
}

func TestGenerateAnswer_SecondPassSeesToolResult(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "retrieved course material"}, nil
	})
	client := &scriptedClient{
		firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "q"})},
		finalText:  "answer",
	}
	orch := NewOrchestrator(client, registry)

	_, err := orch.GenerateAnswer(context.Background(), "system", nil, "question")
	require.NoError(t, err)

	msgs := client.finalPassMessages
	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "search_course_content")

	last := msgs[len(msgs)-1]
	assert.Equal(t, "user", last.Role)
	assert.True(t, last.IsToolResult)
	assert.Equal(t, "retrieved course material", last.Content)
}

func TestGenerateAnswer_FirstPassAdvertisesSchemas(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "ok"}, nil
	})
	client := &scriptedClient{firstText: "direct answer"}
	orch := NewOrchestrator(client, registry)

	_, err := orch.GenerateAnswer(context.Background(), "the system prompt", nil, "q")
	require.NoError(t, err)

	assert.Equal(t, "the system prompt", client.toolPassSettings.system)
	require.Len(t, client.toolPassSettings.tools, 1)
	assert.Equal(t, "search_course_content", client.toolPassSettings.tools[0].Function.Name)
}

func TestGenerateAnswer_HistoryPrecedesQuery(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "ok"}, nil
	})
	client := &scriptedClient{firstText: "answer"}
	orch := NewOrchestrator(client, registry)

	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	_, err := orch.GenerateAnswer(context.Background(), "system", history, "follow-up")
	require.NoError(t, err)

	require.Len(t, client.toolPassMessages, 3)
	assert.Equal(t, "earlier question", client.toolPassMessages[0].Content)
	assert.Equal(t, "earlier answer", client.toolPassMessages[1].Content)
	assert.Equal(t, "follow-up", client.toolPassMessages[2].Content)
}

func TestGenerateAnswer_UnresolvedCourseStillCompletes(t *testing.T) {
	// The search capability reports an unresolvable course as explanatory text,
	// not an error; the exchange must still reach a final answer.
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "No course found matching 'Nonexistent Course'."}, nil
	})
	client := &scriptedClient{
		firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "q", "course_name": "Nonexistent Course"})},
		finalText:  "I could not find that course.",
	}
	orch := NewOrchestrator(client, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "q")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, StateDone, result.Trace[len(result.Trace)-1])

	last := client.finalPassMessages[len(client.finalPassMessages)-1]
	assert.Contains(t, last.Content, "No course found matching")
}

func TestGenerateAnswer_ToolFailureDoesNotAbort(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return nil, errors.New("index unavailable")
	})
	client := &scriptedClient{
		firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "q"})},
		finalText:  "I could not retrieve course material.",
	}
	orch := NewOrchestrator(client, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "q")

	require.NoError(t, err)
	assert.Equal(t, "I could not retrieve course material.", result.Answer)

	last := client.finalPassMessages[len(client.finalPassMessages)-1]
	assert.True(t, last.IsToolResult)
	assert.Contains(t, last.Content, "Tool execution failed")
	assert.Contains(t, last.Content, "index unavailable")
}

func TestGenerateAnswer_UnknownToolRecovered(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "ok"}, nil
	})
	client := &scriptedClient{
		firstCalls: []api.ToolCall{{Function: api.ToolCallFunction{Name: "nonexistent_tool"}}},
		finalText:  "recovered",
	}
	orch := NewOrchestrator(client, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "q")

	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Answer)
	last := client.finalPassMessages[len(client.finalPassMessages)-1]
	assert.Contains(t, last.Content, "Tool execution failed")
}

func TestGenerateAnswer_ProviderFailureIsFatal(t *testing.T) {
	registry, invocations := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "ok"}, nil
	})

	t.Run("first pass", func(t *testing.T) {
		client := &scriptedClient{firstErr: errors.New("connection refused")}
		orch := NewOrchestrator(client, registry)

		_, err := orch.GenerateAnswer(context.Background(), "system", nil, "q")

		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrGenerationFailed)
		assert.Zero(t, *invocations)
	})

	t.Run("final pass", func(t *testing.T) {
		client := &scriptedClient{
			firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "q"})},
			finalErr:   errors.New("rate limited"),
		}
		orch := NewOrchestrator(client, registry)

		_, err := orch.GenerateAnswer(context.Background(), "system", nil, "q")

		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrGenerationFailed)
	})
}

func TestGenerateAnswer_CancelledContext(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{Text: "ok"}, nil
	})
	client := &scriptedClient{firstText: "answer"}
	orch := NewOrchestrator(client, registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.GenerateAnswer(ctx, "system", nil, "q")
	assert.ErrorIs(t, err, schema.ErrGenerationFailed)
}

func TestGenerateAnswer_SourcesResetBetweenExchanges(t *testing.T) {
	registry, _ := newTestRegistry(t, func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
		return &schema.ToolResult{
			Text:    "material",
			Sources: []schema.Citation{{CourseTitle: "Go Basics", LessonNumber: 1}},
		}, nil
	})
	orch := NewOrchestrator(&scriptedClient{
		firstCalls: []api.ToolCall{searchCall(api.ToolCallFunctionArguments{"query": "q"})},
		finalText:  "answer",
	}, registry)

	result, err := orch.GenerateAnswer(context.Background(), "system", nil, "q1")
	require.NoError(t, err)
	assert.Len(t, result.Sources, 1)

	// The next exchange requests no tool, so stale sources must not leak in.
	orch = NewOrchestrator(&scriptedClient{firstText: "direct"}, registry)
	result, err = orch.GenerateAnswer(context.Background(), "system", nil, "q2")
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
}
