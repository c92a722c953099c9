package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursepilot/coursepilot/schema"
)

// Course documents are plain text with a three-line header followed by lesson
// sections:
//
//	Course Title: Building Toward Computer Use
//	Course Link: https://example.com/course
//	Course Instructor: Colt Steele
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson/0
//	<lesson content ...>
//
//	Lesson 1: ...
type ParsedDocument struct {
	Course  schema.Course
	Lessons []LessonContent
}

type LessonContent struct {
	Number  int
	Title   string
	Link    string
	Content string
}

var lessonHeader = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// ParseCourseDocument reads one course document. A missing or empty course
// title is an error; the link and instructor lines are optional.
func ParseCourseDocument(r io.Reader) (*ParsedDocument, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &ParsedDocument{}

	var current *LessonContent
	var content strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(content.String())
		doc.Lessons = append(doc.Lessons, *current)
		doc.Course.Lessons = append(doc.Course.Lessons, schema.Lesson{
			Number: current.Number,
			Title:  current.Title,
			Link:   current.Link,
		})
		current = nil
		content.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()

		if m := lessonHeader.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &LessonContent{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if current != nil {
			if link, ok := headerValue(line, "Lesson Link:"); ok && current.Link == "" && strings.TrimSpace(content.String()) == "" {
				current.Link = link
				continue
			}
			content.WriteString(line)
			content.WriteString("\n")
			continue
		}

		if v, ok := headerValue(line, "Course Title:"); ok {
			doc.Course.Title = v
		} else if v, ok := headerValue(line, "Course Link:"); ok {
			doc.Course.Link = v
		} else if v, ok := headerValue(line, "Course Instructor:"); ok {
			doc.Course.Instructor = v
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read course document: %w", err)
	}
	if doc.Course.Title == "" {
		return nil, fmt.Errorf("course document has no 'Course Title:' header")
	}
	return doc, nil
}

func headerValue(line, prefix string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
}
