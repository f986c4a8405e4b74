package memory

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one utterance in the conversation. Messages are immutable once
// created and carry the round number they belong to: the round counter
// advances on every user message, and the assistant reply to that question
// shares its round number.
//
// The timestamp is an explicit constructor argument rather than a hidden
// time.Now call, so tests can fix it.
type Message struct {
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	RoundNumber int       `json:"round_number"`
}

// NewMessage constructs an immutable message.
func NewMessage(role Role, content string, ts time.Time, round int) Message {
	return Message{
		Role:        role,
		Content:     content,
		Timestamp:   ts,
		RoundNumber: round,
	}
}

// RoundRange is an inclusive span of round numbers covered by a summary.
type RoundRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ConversationSummary is the durable record produced when a block of the
// oldest rounds is compacted out of short-term memory. Immutable; owned by
// LongTermMemory.
type ConversationSummary struct {
	Summary    string     `json:"summary"`
	KeyFacts   []string   `json:"key_facts"`
	RoundRange RoundRange `json:"round_range"`
	Timestamp  time.Time  `json:"timestamp"`
}

// RetrievedChunk is a single nearest-neighbor result from the ContentStore.
// Transient: produced per query, never persisted.
type RetrievedChunk struct {
	Text     string
	Metadata map[string]string
	// Distance is the similarity distance (smaller = closer). Negative when
	// the backend does not report one.
	Distance float64
}
