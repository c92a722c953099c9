package rag

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/coursepilot/coursepilot/agent"
	"github.com/coursepilot/coursepilot/llm"
	"github.com/coursepilot/coursepilot/memory"
	"github.com/coursepilot/coursepilot/prompts"
	"github.com/coursepilot/coursepilot/schema"
	"github.com/coursepilot/coursepilot/tools"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// System is the single entry point for answering course questions. It wires the
// conversation store to the orchestrator and owns session identity.
type System struct {
	store        *memory.ConversationStore
	orchestrator *agent.Orchestrator
	systemPrompt string
}

func NewSystem(client llm.LLMClient, registry *tools.Registry, store *memory.ConversationStore) (*System, error) {
	systemPrompt, err := prompts.RenderSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	return &System{
		store:        store,
		orchestrator: agent.NewOrchestrator(client, registry),
		systemPrompt: systemPrompt,
	}, nil
}

// Ask answers one query within a session. An empty sessionID starts a fresh
// session; the returned Answer always carries the id to continue it.
//
// A failed exchange appends nothing to the session, so a retry of the same
// query sees the same history.
func (s *System) Ask(ctx context.Context, query, sessionID string) (*schema.Answer, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	history := s.store.GetHistory(sessionID)
	historyMsgs, err := linq.Pipe2(
		linq.FromSlice(ctx, history),
		linq.Select(func(m memory.Message) llm.Message {
			return llm.Message{Role: m.Role, Content: m.Content}
		}),
		linq.ToSlice[llm.Message](),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to project history: %w", err)
	}

	logger.Info("answering query",
		zap.String("sessionId", sessionID), zap.Int("historyLen", len(history)))

	result, err := s.orchestrator.GenerateAnswer(ctx, s.systemPrompt, historyMsgs, query)
	if err != nil {
		return nil, err
	}

	s.store.Append(sessionID,
		memory.Message{Role: "user", Content: query},
		memory.Message{Role: "assistant", Content: result.Answer, Sources: result.Sources},
	)

	return &schema.Answer{
		Answer:    result.Answer,
		Sources:   result.Sources,
		SessionID: sessionID,
	}, nil
}
