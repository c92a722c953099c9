package index

import (
	"strings"
	"sync"

	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/coursepilot/coursepilot/schema"
)

// CourseCatalog holds course metadata populated during ingestion: titles,
// instructors, links and lesson outlines. Read-only on the query path.
type CourseCatalog struct {
	mu      sync.RWMutex
	courses []schema.Course
	byTitle map[string]int // lower-cased title -> position in courses
}

func NewCourseCatalog() *CourseCatalog {
	return &CourseCatalog{
		byTitle: make(map[string]int),
	}
}

// AddCourse registers a course. Returns false if the title is already known.
func (c *CourseCatalog) AddCourse(course schema.Course) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(course.Title)
	if _, ok := c.byTitle[key]; ok {
		return false
	}
	c.byTitle[key] = len(c.courses)
	c.courses = append(c.courses, course)
	return true
}

func (c *CourseCatalog) HasCourse(title string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byTitle[strings.ToLower(title)]
	return ok
}

func (c *CourseCatalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.courses)
}

// Titles returns course titles in ingestion order.
func (c *CourseCatalog) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	titles := make([]string, len(c.courses))
	for i, course := range c.courses {
		titles[i] = course.Title
	}
	return titles
}

// Outline returns the full course record for an exact title.
func (c *CourseCatalog) Outline(title string) (schema.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.byTitle[strings.ToLower(title)]
	if !ok {
		return schema.Course{}, false
	}
	return c.courses[pos], true
}

// LessonLink returns the link for a lesson, or "" when unknown.
func (c *CourseCatalog) LessonLink(courseTitle string, lessonNumber int) string {
	course, ok := c.Outline(courseTitle)
	if !ok {
		return ""
	}
	for _, lesson := range course.Lessons {
		if lesson.Number == lessonNumber {
			return lesson.Link
		}
	}
	return ""
}

// ResolveCourseName maps a user-supplied course name to a stored title.
// Resolution is deterministic: case-insensitive exact match, then a unique
// substring match in either direction, then best token overlap with ties
// broken by ingestion order.
func (c *CourseCatalog) ResolveCourseName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	lowered := strings.ToLower(name)
	if pos, ok := c.byTitle[lowered]; ok {
		return c.courses[pos].Title, true
	}

	var substrMatches []int
	for i, course := range c.courses {
		title := strings.ToLower(course.Title)
		if strings.Contains(title, lowered) || strings.Contains(lowered, title) {
			substrMatches = append(substrMatches, i)
		}
	}
	if len(substrMatches) == 1 {
		return c.courses[substrMatches[0]].Title, true
	}

	queryTokens := ds.NewSet[string]()
	for _, tok := range strings.Fields(lowered) {
		queryTokens.Add(tok)
	}

	best, bestOverlap := -1, 0
	for i, course := range c.courses {
		overlap := 0
		for _, tok := range strings.Fields(strings.ToLower(course.Title)) {
			if queryTokens.Contains(tok) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return c.courses[best].Title, true
	}
	return "", false
}
