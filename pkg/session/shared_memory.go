package session

import (
	"encoding/json"
	"sync"
	"time"
)

// Message is one entry in a SharedMemory conversation log (spec.md §3).
// Append-only: once appended, a Message is never edited or deleted.
type Message struct {
	FromAgent   AgentName   `json:"from_agent"`
	Role        Role        `json:"role"`
	MessageType string      `json:"message_type"`
	Content     interface{} `json:"content"`
	Timestamp   time.Time   `json:"timestamp"`
}

// MarshalLine renders the Message as one compact JSON object, for
// conversation.jsonl (spec.md §4.8, §6).
func (m Message) MarshalLine() ([]byte, error) {
	return json.Marshal(m)
}

// SharedMemory is the append-only log of structured agent messages for one
// session. All reads return a snapshot slice — callers may not mutate it
// back into the log.
type SharedMemory struct {
	mu       sync.RWMutex
	messages []Message
	onAppend func(Message) // write-through hook, e.g. to conversation.jsonl
}

// NewSharedMemory creates an empty, in-memory SharedMemory.
func NewSharedMemory() *SharedMemory {
	return &SharedMemory{}
}

// OnAppend registers a write-through callback invoked synchronously inside
// Append, after the message is durably recorded in memory. The Orchestrator
// uses this to persist every message to conversation.jsonl before the next
// agent's prompt is built (spec.md §5 ordering guarantee).
func (s *SharedMemory) OnAppend(fn func(Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAppend = fn
}

// Append pushes a message to the end of the log. Timestamp is set to the
// current time if zero, and is clamped forward to maintain the
// monotonically-non-decreasing invariant (spec.md §4.3) even if the caller
// passes an earlier explicit timestamp (e.g. a stale clock in a test).
func (s *SharedMemory) Append(msg Message) {
	s.mu.Lock()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if n := len(s.messages); n > 0 && msg.Timestamp.Before(s.messages[n-1].Timestamp) {
		msg.Timestamp = s.messages[n-1].Timestamp
	}
	s.messages = append(s.messages, msg)
	hook := s.onAppend
	s.mu.Unlock()

	if hook != nil {
		hook(msg)
	}
}

// History returns a read-only view of the log, optionally windowed to the
// last lastN messages and filtered to the given roles. Order is preserved.
// A zero lastN means "no limit". An empty roles filter means "all roles".
func (s *SharedMemory) History(lastN int, roles ...Role) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Message
	if len(roles) == 0 {
		filtered = append(filtered, s.messages...)
	} else {
		want := make(map[Role]bool, len(roles))
		for _, r := range roles {
			want[r] = true
		}
		for _, m := range s.messages {
			if want[m.Role] {
				filtered = append(filtered, m)
			}
		}
	}

	if lastN > 0 && len(filtered) > lastN {
		filtered = filtered[len(filtered)-lastN:]
	}
	return filtered
}

// LatestImplementation returns the most recent role=implementation message's
// content, or nil if none has been appended yet.
func (s *SharedMemory) LatestImplementation() *Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleImplementation {
			if impl, ok := s.messages[i].Content.(Implementation); ok {
				return &impl
			}
		}
	}
	return nil
}

// Len returns the number of appended messages.
func (s *SharedMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
