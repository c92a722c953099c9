package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/coursepilot/coursepilot/embedding"
	"github.com/coursepilot/coursepilot/index"
	"github.com/coursepilot/coursepilot/schema"
	"go.uber.org/zap"
)

// Ingestor turns course documents into embedded chunks in the vector index and
// registers the course in the catalog.
type Ingestor struct {
	embedder embedding.Embedder
	idx      *index.VectorIndex
	catalog  *index.CourseCatalog
	chunker  *SentenceChunker
}

func NewIngestor(embedder embedding.Embedder, idx *index.VectorIndex, catalog *index.CourseCatalog, chunker *SentenceChunker) *Ingestor {
	return &Ingestor{
		embedder: embedder,
		idx:      idx,
		catalog:  catalog,
		chunker:  chunker,
	}
}

// IngestDir ingests every course document in dir, in name order. Documents
// whose course title is already in the catalog are skipped, so restarts and
// watcher re-fires stay idempotent.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read docs directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsCourseDocument(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		added, err := ing.IngestFile(ctx, filepath.Join(dir, name))
		if err != nil {
			logger.Error("failed to ingest document",
				zap.String("file", name), zap.Error(err))
			continue
		}
		if added > 0 {
			coursesAdded++
			chunksAdded += added
		}
	}
	return coursesAdded, chunksAdded, nil
}

// IngestFile ingests one course document and returns the number of chunks
// added, zero when the course is already known.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ParseCourseDocument(f)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if ing.catalog.HasCourse(doc.Course.Title) {
		logger.Info("course already ingested, skipping",
			zap.String("course", doc.Course.Title))
		return 0, nil
	}

	chunks := ing.buildChunks(doc)
	if len(chunks) == 0 {
		logger.Info("course document has no content",
			zap.String("course", doc.Course.Title))
		ing.catalog.AddCourse(doc.Course)
		return 0, nil
	}

	tasks := make([]<-chan async.Result[[]float32], 0, len(chunks))
	for _, chunk := range chunks {
		text := chunk.Text
		tasks = append(tasks, async.Go(func() ([]float32, error) {
			return ing.embedder.Embed(ctx, text)
		}))
	}

	embeddings, err := async.AwaitAll(tasks...)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks for %s: %w", doc.Course.Title, err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := ing.idx.Upsert(chunks); err != nil {
		return 0, fmt.Errorf("failed to index chunks for %s: %w", doc.Course.Title, err)
	}

	// Register last: the course only becomes resolvable once its content is
	// queryable.
	ing.catalog.AddCourse(doc.Course)

	logger.Info("ingested course",
		zap.String("course", doc.Course.Title),
		zap.Int("lessons", len(doc.Lessons)),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// buildChunks prefixes each chunk with its provenance so retrieved blocks stay
// self-describing out of context.
func (ing *Ingestor) buildChunks(doc *ParsedDocument) []schema.Chunk {
	var chunks []schema.Chunk
	idx := 0
	for _, lesson := range doc.Lessons {
		for _, text := range ing.chunker.Chunk(lesson.Content) {
			chunks = append(chunks, schema.Chunk{
				ChunkID:      fmt.Sprintf("%s:%d", doc.Course.Title, idx),
				CourseTitle:  doc.Course.Title,
				LessonNumber: lesson.Number,
				ChunkIndex:   idx,
				Text: fmt.Sprintf("Course %s Lesson %d content: %s",
					doc.Course.Title, lesson.Number, text),
			})
			idx++
		}
	}
	return chunks
}

// IsCourseDocument reports whether the file name looks like a course document.
func IsCourseDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
