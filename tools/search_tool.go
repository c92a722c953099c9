package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/coursepilot/coursepilot/schema"
	"github.com/coursepilot/coursepilot/search"
	"github.com/ollama/ollama/api"
)

// NewCourseSearchTool builds the search_course_content capability backed by the
// search service.
func NewCourseSearchTool(svc *search.Service) MCPTool {
	return NewMCPToolBuilder(
		"search_course_content",
		"Search course materials with smart course name matching and lesson filtering. "+
			"Use for questions about specific course content or detailed educational materials.").
		StringParam("query", "What to search for in the course content", true).
		StringParam("course_name", "Course title (partial matches work, e.g. 'MCP', 'Introduction')", false).
		IntParam("lesson_number", "Specific lesson number to search within (e.g. 1, 2, 3)", false).
		WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
			query, _ := params["query"].(string)
			courseName, _ := params["course_name"].(string)

			lessonNumber, err := optionalInt(params, "lesson_number")
			if err != nil {
				return nil, fmt.Errorf("%w: %v", schema.ErrInvalidToolArguments, err)
			}

			text, citations, err := svc.Search(ctx, query, courseName, lessonNumber)
			if err != nil {
				return nil, err
			}
			return &schema.ToolResult{Text: text, Sources: citations}, nil
		}).
		Build()
}

// optionalInt coerces a JSON-decoded argument into *int. Models send numbers
// as float64, but string digits show up too.
func optionalInt(params api.ToolCallFunctionArguments, key string) (*int, error) {
	value, ok := params[key]
	if !ok || value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case float64:
		n := int(v)
		return &n, nil
	case int:
		return &v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s is not an integer: %v", key, value)
		}
		out := int(n)
		return &out, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s is not an integer: %v", key, value)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%s is not an integer: %v", key, value)
	}
}
