package schema

// Course is a named collection of lessons. Immutable after ingestion; the query
// path only ever reads it.
type Course struct {
	Title      string   `json:"title"` // unique identifier
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson belongs to exactly one course. Number is unique within the course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Chunk is a contiguous span of lesson text plus its embedding.
type Chunk struct {
	ChunkID      string    `json:"chunkId"`
	CourseTitle  string    `json:"courseTitle"`
	LessonNumber int       `json:"lessonNumber"`
	ChunkIndex   int       `json:"chunkIndex"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"-"`
}

// SearchResult is a ranked read-only projection of a chunk. Produced per query,
// never stored.
type SearchResult struct {
	Chunk    Chunk   `json:"chunk"`
	Score    float64 `json:"score"`    // cosine similarity, higher is better
	Distance float64 `json:"distance"` // 1 - Score
}

// Citation identifies where a retrieved block came from, suitable for display.
type Citation struct {
	CourseTitle  string `json:"courseTitle"`
	LessonNumber int    `json:"lessonNumber"`
	LessonLink   string `json:"lessonLink,omitempty"`
}

// ToolResult is what a tool handler hands back to the orchestrator: text the
// model will read, plus the citations backing it.
type ToolResult struct {
	Text    string     `json:"text"`
	Sources []Citation `json:"sources,omitempty"`
}

// Answer is the facade's reply to one query.
type Answer struct {
	Answer    string     `json:"answer"`
	Sources   []Citation `json:"sources"`
	SessionID string     `json:"session_id"`
}
