// Package session keeps per-conversation message history in memory.
//
// The store is keyed by conversation ID and caps each conversation at a
// fixed number of messages, evicting the oldest first. State lives only in
// process memory; a restart clears all conversations.
package session

import (
	"sync"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// DefaultMaxMessages caps a conversation at 10 exchanges.
const DefaultMaxMessages = 20

// Message is one turn in a conversation.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Store holds conversation histories. Safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	maxMessages   int
	conversations map[string][]Message
}

// NewStore creates a store. maxMessages values below 1 fall back to
// DefaultMaxMessages.
func NewStore(maxMessages int) *Store {
	if maxMessages < 1 {
		maxMessages = DefaultMaxMessages
	}
	return &Store{
		maxMessages:   maxMessages,
		conversations: make(map[string][]Message),
	}
}

// Append adds a message to a conversation, creating it on first use.
// When the cap is exceeded the oldest messages are dropped.
func (s *Store) Append(conversationID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.conversations[conversationID], Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if over := len(msgs) - s.maxMessages; over > 0 {
		msgs = msgs[over:]
	}
	s.conversations[conversationID] = msgs
}

// History returns up to limit most recent messages as a copy. limit <= 0
// returns the whole history. An unknown conversation yields nil.
func (s *Store) History(conversationID string, limit int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.conversations[conversationID]
	if len(msgs) == 0 {
		return nil
	}
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear removes a conversation's history.
func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
}

// Len returns the number of messages in a conversation.
func (s *Store) Len(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations[conversationID])
}

// Conversations returns the number of active conversations.
func (s *Store) Conversations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
