package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursepilot/coursepilot/index"
	"github.com/coursepilot/coursepilot/schema"
	"github.com/ollama/ollama/api"
)

// NewCourseOutlineTool builds the get_course_outline capability: course title,
// link and the full numbered lesson list from the catalog.
func NewCourseOutlineTool(catalog *index.CourseCatalog) MCPTool {
	return NewMCPToolBuilder(
		"get_course_outline",
		"Get the complete outline of a course: title, link and all lessons with their numbers and titles. "+
			"Use for course overview or structure questions.").
		StringParam("course_name", "Course title (partial matches work)", true).
		WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) (*schema.ToolResult, error) {
			courseName, _ := params["course_name"].(string)

			resolved, ok := catalog.ResolveCourseName(courseName)
			if !ok {
				return &schema.ToolResult{
					Text: fmt.Sprintf("No course found matching '%s'.", courseName),
				}, nil
			}

			course, ok := catalog.Outline(resolved)
			if !ok {
				return &schema.ToolResult{
					Text: fmt.Sprintf("No course found matching '%s'.", courseName),
				}, nil
			}

			var out strings.Builder
			fmt.Fprintf(&out, "Course: %s\n", course.Title)
			if course.Link != "" {
				fmt.Fprintf(&out, "Link: %s\n", course.Link)
			}
			if course.Instructor != "" {
				fmt.Fprintf(&out, "Instructor: %s\n", course.Instructor)
			}
			fmt.Fprintf(&out, "Lessons (%d):\n", len(course.Lessons))
			for _, lesson := range course.Lessons {
				fmt.Fprintf(&out, "%d. %s\n", lesson.Number, lesson.Title)
			}

			return &schema.ToolResult{
				Text:    out.String(),
				Sources: []schema.Citation{{CourseTitle: course.Title}},
			}, nil
		}).
		Build()
}
