package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/coursepilot/coursepilot/embedding"
	"github.com/coursepilot/coursepilot/index"
	"github.com/coursepilot/coursepilot/schema"
	"go.uber.org/zap"
)

// DefaultMaxResults caps results per search call so tool output cannot grow the
// model context without bound.
const DefaultMaxResults = 5

// Service wraps the vector index with query embedding, course-name resolution
// and result formatting. It is the capability behind search_course_content.
type Service struct {
	embedder   embedding.Embedder
	idx        *index.VectorIndex
	catalog    *index.CourseCatalog
	maxResults int
}

func NewService(embedder embedding.Embedder, idx *index.VectorIndex, catalog *index.CourseCatalog, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Service{
		embedder:   embedder,
		idx:        idx,
		catalog:    catalog,
		maxResults: maxResults,
	}
}

// Search embeds queryText, queries the index with the resolved filters and
// formats each hit into a provenance-labelled block. A course name that
// resolves to nothing is not an error: the orchestrator still needs a second
// pass, so it comes back as an explanatory empty-result message.
func (s *Service) Search(ctx context.Context, queryText, courseName string, lessonNumber *int) (string, []schema.Citation, error) {
	filter := &index.Filter{LessonNumber: lessonNumber}

	if courseName != "" {
		resolved, ok := s.catalog.ResolveCourseName(courseName)
		if !ok {
			logger.Info("course name did not resolve", zap.String("courseName", courseName))
			return fmt.Sprintf("No course found matching '%s'.", courseName), nil, nil
		}
		filter.CourseTitle = resolved
	}

	queryEmbedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.idx.Query(queryEmbedding, s.maxResults, filter)
	if err != nil {
		return "", nil, fmt.Errorf("vector query failed: %w", err)
	}

	if len(results) == 0 {
		return s.emptyResultMessage(courseName, lessonNumber), nil, nil
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[%s - Lesson %d]\n%s",
			r.Chunk.CourseTitle, r.Chunk.LessonNumber, r.Chunk.Text))
	}

	citations, err := linq.Pipe2(
		linq.FromSlice(ctx, results),
		linq.Select(func(r schema.SearchResult) schema.Citation {
			return schema.Citation{
				CourseTitle:  r.Chunk.CourseTitle,
				LessonNumber: r.Chunk.LessonNumber,
				LessonLink:   s.catalog.LessonLink(r.Chunk.CourseTitle, r.Chunk.LessonNumber),
			}
		}),
		linq.ToSlice[schema.Citation](),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build citations: %w", err)
	}

	return strings.Join(blocks, "\n\n"), citations, nil
}

func (s *Service) emptyResultMessage(courseName string, lessonNumber *int) string {
	var scope strings.Builder
	scope.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&scope, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&scope, " in lesson %d", *lessonNumber)
	}
	scope.WriteString(".")
	return scope.String()
}
