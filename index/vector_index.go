package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/coursepilot/coursepilot/schema"
)

// Filter restricts query candidates by exact-match metadata predicates.
// Zero-value fields mean "no restriction".
type Filter struct {
	CourseTitle  string
	LessonNumber *int
}

func (f *Filter) matches(c *schema.Chunk) bool {
	if f == nil {
		return true
	}
	if f.CourseTitle != "" && c.CourseTitle != f.CourseTitle {
		return false
	}
	if f.LessonNumber != nil && c.LessonNumber != *f.LessonNumber {
		return false
	}
	return true
}

// VectorIndex is an in-memory cosine-similarity index over chunk embeddings.
// Writes happen during ingestion; the query path is a shared read path across
// concurrent exchanges.
type VectorIndex struct {
	mu     sync.RWMutex
	dims   int
	chunks []schema.Chunk
	byID   map[string]int // ChunkID -> position in chunks
}

func NewVectorIndex(dims int) *VectorIndex {
	return &VectorIndex{
		dims: dims,
		byID: make(map[string]int),
	}
}

func (ix *VectorIndex) Dimensions() int {
	return ix.dims
}

func (ix *VectorIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Upsert stores chunks with their embeddings. A chunk with a known ChunkID
// replaces the stored one in place, keeping its original insertion position.
// A dimension mismatch is a configuration error, not a retryable one.
func (ix *VectorIndex) Upsert(chunks []schema.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) != ix.dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
				schema.ErrDimensionMismatch, chunk.ChunkID, len(chunk.Embedding), ix.dims)
		}
		if pos, ok := ix.byID[chunk.ChunkID]; ok {
			ix.chunks[pos] = chunk
			continue
		}
		ix.byID[chunk.ChunkID] = len(ix.chunks)
		ix.chunks = append(ix.chunks, chunk)
	}
	return nil
}

// Query returns up to topK results ordered by descending cosine similarity.
// Ties keep insertion order. An empty index yields an empty slice, not an error.
func (ix *VectorIndex) Query(embedding []float32, topK int, filter *Filter) ([]schema.SearchResult, error) {
	if len(embedding) != ix.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			schema.ErrDimensionMismatch, len(embedding), ix.dims)
	}
	if topK <= 0 {
		return []schema.SearchResult{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]schema.SearchResult, 0, topK)
	for i := range ix.chunks {
		chunk := &ix.chunks[i]
		if !filter.matches(chunk) {
			continue
		}
		score := cosineSimilarity(embedding, chunk.Embedding)
		results = append(results, schema.SearchResult{
			Chunk:    *chunk,
			Score:    score,
			Distance: 1 - score,
		})
	}

	// SliceStable keeps insertion order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
