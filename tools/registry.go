package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/coursepilot/coursepilot/schema"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Registry maps tool names to callable capabilities and their declared schemas.
// Schemas are advertised to the model; invocations are dispatched by name.
//
// The registry also tracks the citations produced by invocations during the
// current exchange so the orchestrator can attach sources to the final answer
// without threading them through every call.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]MCPTool
	order       []string // registration order, kept for stable advertisement
	lastSources []schema.Citation
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]MCPTool),
	}
}

// Register adds a capability. A missing name or handler is a configuration
// error: fail at startup, not at request time.
func (r *Registry) Register(tool MCPTool) error {
	name := tool.Function.Name
	if name == "" {
		return fmt.Errorf("tool registration requires a name")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q registration requires a handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Schemas returns the advertised tool schemas in registration order.
func (r *Registry) Schemas() []api.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]api.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Tool)
	}
	return out
}

// Invoke dispatches a model-requested tool call. Unknown names and malformed
// arguments come back as typed errors; the orchestrator converts them into
// tool-result text so the model can recover instead of aborting the exchange.
func (r *Registry) Invoke(ctx context.Context, call api.ToolCall) (string, error) {
	name := call.Function.Name

	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", schema.ErrToolNotFound, name)
	}

	if err := validateArguments(tool, call.Function.Arguments); err != nil {
		return "", err
	}

	logger.Info("invoking tool", zap.String("tool", name))
	result, err := tool.Handler(ctx, call.Function.Arguments)
	if err != nil {
		return "", err
	}

	if len(result.Sources) > 0 {
		r.mu.Lock()
		r.lastSources = append(r.lastSources, result.Sources...)
		r.mu.Unlock()
	}
	return result.Text, nil
}

// LastSources returns the citations gathered by invocations since the last
// reset, in invocation order.
func (r *Registry) LastSources() []schema.Citation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.Citation, len(r.lastSources))
	copy(out, r.lastSources)
	return out
}

// ResetSources clears gathered citations. Called by the orchestrator at the
// start of each exchange.
func (r *Registry) ResetSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSources = nil
}

func validateArguments(tool MCPTool, args api.ToolCallFunctionArguments) error {
	for _, required := range tool.Function.Parameters.Required {
		value, present := args[required]
		if !present || value == nil {
			return fmt.Errorf("%w: %s is missing required field %q",
				schema.ErrInvalidToolArguments, tool.Function.Name, required)
		}
		if s, isString := value.(string); isString && s == "" {
			return fmt.Errorf("%w: %s has empty required field %q",
				schema.ErrInvalidToolArguments, tool.Function.Name, required)
		}
	}
	return nil
}
