package memory

import (
	"sync"
)

// DefaultMaxMessages retains four full exchanges per session.
const DefaultMaxMessages = 8

// ConversationStore holds bounded per-session history in process memory.
// Sessions are created implicitly on first access and live until the process
// exits; losing them on restart is a deliberate trade-off.
//
// Appends are serialized per session so concurrent exchanges on the same
// session cannot interleave their history entries.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	maxMsgs  int
}

type session struct {
	mu   sync.Mutex
	conv Conversation
}

func NewConversationStore(maxMsgs int) *ConversationStore {
	if maxMsgs <= 0 {
		maxMsgs = DefaultMaxMessages
	}
	return &ConversationStore{
		sessions: make(map[string]*session),
		maxMsgs:  maxMsgs,
	}
}

func (s *ConversationStore) MaxMessages() int {
	return s.maxMsgs
}

// GetHistory returns a copy of the session's messages in conversation order.
// An unseen session id yields empty history.
func (s *ConversationStore) GetHistory(sessionID string) []Message {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]Message, len(sess.conv.Messages))
	copy(out, sess.conv.Messages)
	return out
}

// Append adds messages to the session, evicting oldest-first once the retained
// count exceeds the bound. Passing a full exchange (user + assistant) in one
// call keeps the pair adjacent even under concurrent exchanges.
func (s *ConversationStore) Append(sessionID string, messages ...Message) {
	if len(messages) == 0 {
		return
	}

	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.conv.Messages = append(sess.conv.Messages, messages...)
	if overflow := len(sess.conv.Messages) - s.maxMsgs; overflow > 0 {
		sess.conv.Messages = append([]Message(nil), sess.conv.Messages[overflow:]...)
	}
}

func (s *ConversationStore) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{conv: Conversation{ID: sessionID}}
	s.sessions[sessionID] = sess
	return sess
}
