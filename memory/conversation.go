package memory

import (
	"github.com/coursepilot/coursepilot/schema"
)

// Message is one persisted conversation turn. Assistant messages may carry the
// citations that backed them.
type Message struct {
	Role    string            `json:"role"`
	Content string            `json:"content"`
	Sources []schema.Citation `json:"sources,omitempty"`
}

// Conversation is one session's ordered dialogue history.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}
