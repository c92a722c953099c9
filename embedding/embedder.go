package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/coursepilot/coursepilot/schema"
	"github.com/ollama/ollama/api"
)

// Embedder converts text into a fixed-dimension vector. Deterministic for
// identical input; no side effects visible to callers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// OllamaEmbedder embeds text through a local Ollama daemon.
type OllamaEmbedder struct {
	client *api.Client
	model  string
	dims   int
}

func NewOllamaEmbedder(client *api.Client, model string, dims int) *OllamaEmbedder {
	return &OllamaEmbedder{
		client: client,
		model:  model,
		dims:   dims,
	}
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &api.EmbeddingRequest{
		Model:     e.model,
		Prompt:    text,
		KeepAlive: &api.Duration{Duration: 60 * time.Minute}, // keep model loaded for reuse
	}
	resp, err := e.client.Embeddings(ctx, req) // blocking, non-streaming
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	emb64 := resp.Embedding // []float64
	if len(emb64) != e.dims {
		return nil, fmt.Errorf("%w: model %s returned %d dimensions, configured %d",
			schema.ErrDimensionMismatch, e.model, len(emb64), e.dims)
	}

	emb32 := make([]float32, len(emb64))
	for i, v := range emb64 {
		emb32[i] = float32(v)
	}
	return emb32, nil
}
