package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_GroupsSentences(t *testing.T) {
	chunker := NewSentenceChunker(2, 0)

	chunks := chunker.Chunk("One. Two. Three. Four.")

	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0])
	assert.Equal(t, "Three. Four.", chunks[1])
}

func TestChunk_Overlap(t *testing.T) {
	chunker := NewSentenceChunker(3, 1)

	chunks := chunker.Chunk("A. B. C. D. E.")

	require.Len(t, chunks, 2)
	assert.Equal(t, "A. B. C.", chunks[0])
	// The last sentence of the previous chunk leads the next one.
	assert.True(t, strings.HasPrefix(chunks[1], "C."), "got %q", chunks[1])
}

func TestChunk_NoPunctuation(t *testing.T) {
	chunker := NewSentenceChunker(5, 1)

	chunks := chunker.Chunk("just a fragment without terminal punctuation")

	require.Len(t, chunks, 1)
	assert.Equal(t, "just a fragment without terminal punctuation", chunks[0])
}

func TestChunk_EmptyText(t *testing.T) {
	chunker := NewSentenceChunker(5, 1)

	assert.Nil(t, chunker.Chunk(""))
	assert.Nil(t, chunker.Chunk("   \n\t  "))
}

func TestChunk_ShortText(t *testing.T) {
	chunker := NewSentenceChunker(5, 1)

	chunks := chunker.Chunk("Only one sentence here.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Only one sentence here.", chunks[0])
}

func TestNewSentenceChunker_ClampsBadSettings(t *testing.T) {
	// Overlap >= chunk size would loop forever without the clamp.
	chunker := NewSentenceChunker(2, 5)

	chunks := chunker.Chunk("A. B. C. D.")
	assert.NotEmpty(t, chunks)
}
