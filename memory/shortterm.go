package memory

import (
	"log"
	"sort"
	"time"
)

// ShortTermMemory is the bounded ordered log of the most recent conversation
// rounds. Fullness is measured in complete user rounds, not raw message count,
// so a question and its still-pending reply are never split by compaction.
//
// Not safe for concurrent use; the caller serializes turns per session.
type ShortTermMemory struct {
	maxRounds    int
	messages     []Message
	currentRound int
	now          func() time.Time
}

// NewShortTermMemory creates a short-term log holding at most maxRounds
// complete rounds.
func NewShortTermMemory(maxRounds int, now func() time.Time) *ShortTermMemory {
	if now == nil {
		now = time.Now
	}
	return &ShortTermMemory{
		maxRounds: maxRounds,
		now:       now,
	}
}

// AddMessage appends a message to the log. A user message opens a new round;
// an assistant message joins the current one.
func (s *ShortTermMemory) AddMessage(role Role, content string) Message {
	if role == RoleUser {
		s.currentRound++
	}

	msg := NewMessage(role, content, s.now(), s.currentRound)
	s.messages = append(s.messages, msg)

	return msg
}

// IsFull reports whether the log already holds maxRounds rounds, counted by
// distinct round numbers among user messages.
func (s *ShortTermMemory) IsFull() bool {
	return s.RoundCount() >= s.maxRounds
}

// RoundCount returns the number of distinct rounds currently held.
func (s *ShortTermMemory) RoundCount() int {
	rounds := make(map[int]struct{})
	for _, msg := range s.messages {
		if msg.Role == RoleUser {
			rounds[msg.RoundNumber] = struct{}{}
		}
	}
	return len(rounds)
}

// CurrentRound returns the highest round number ever assigned.
func (s *ShortTermMemory) CurrentRound() int {
	return s.currentRound
}

// OldestRounds returns all messages belonging to the n smallest round numbers
// present, in original order.
func (s *ShortTermMemory) OldestRounds(n int) []Message {
	if len(s.messages) == 0 || n <= 0 {
		return nil
	}

	seen := make(map[int]struct{})
	var rounds []int
	for _, msg := range s.messages {
		if _, ok := seen[msg.RoundNumber]; !ok {
			seen[msg.RoundNumber] = struct{}{}
			rounds = append(rounds, msg.RoundNumber)
		}
	}
	sort.Ints(rounds)
	if n > len(rounds) {
		n = len(rounds)
	}

	target := make(map[int]struct{}, n)
	for _, r := range rounds[:n] {
		target[r] = struct{}{}
	}

	var oldest []Message
	for _, msg := range s.messages {
		if _, ok := target[msg.RoundNumber]; ok {
			oldest = append(oldest, msg)
		}
	}
	return oldest
}

// RemoveRounds deletes every message whose round number is in the set,
// preserving the order of survivors.
func (s *ShortTermMemory) RemoveRounds(rounds map[int]struct{}) {
	before := len(s.messages)

	kept := s.messages[:0]
	for _, msg := range s.messages {
		if _, ok := rounds[msg.RoundNumber]; !ok {
			kept = append(kept, msg)
		}
	}
	s.messages = kept

	log.Printf("[MEMORY] Removed %d messages from short-term memory", before-len(s.messages))
}

// AllMessages returns a read-only snapshot of the log.
func (s *ShortTermMemory) AllMessages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// restore reloads the log from a snapshot. Used on session reload only.
func (s *ShortTermMemory) restore(messages []Message, currentRound int) {
	s.messages = append([]Message(nil), messages...)
	s.currentRound = currentRound
}
