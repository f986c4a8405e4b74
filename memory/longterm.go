package memory

import "log"

// LongTermMemory is the append-only log of compaction summaries. Insertion
// order equals round order; the Manager enforces that, not this type.
//
// Not safe for concurrent use; the caller serializes turns per session.
type LongTermMemory struct {
	summaries []ConversationSummary
}

// NewLongTermMemory creates an empty summary log.
func NewLongTermMemory() *LongTermMemory {
	return &LongTermMemory{}
}

// Add appends a summary.
func (l *LongTermMemory) Add(summary ConversationSummary) {
	l.summaries = append(l.summaries, summary)

	log.Printf("[MEMORY] Added summary: rounds=%d-%d, facts=%d",
		summary.RoundRange.Start, summary.RoundRange.End, len(summary.KeyFacts))
}

// All returns a read-only snapshot of every summary in insertion order.
func (l *LongTermMemory) All() []ConversationSummary {
	out := make([]ConversationSummary, len(l.summaries))
	copy(out, l.summaries)
	return out
}

// Last returns the most recent k summaries in insertion order.
func (l *LongTermMemory) Last(k int) []ConversationSummary {
	if k <= 0 || len(l.summaries) == 0 {
		return nil
	}
	if k > len(l.summaries) {
		k = len(l.summaries)
	}
	out := make([]ConversationSummary, k)
	copy(out, l.summaries[len(l.summaries)-k:])
	return out
}

// Count returns the number of summaries held.
func (l *LongTermMemory) Count() int {
	return len(l.summaries)
}

// restore reloads the log from a snapshot. Used on session reload only.
func (l *LongTermMemory) restore(summaries []ConversationSummary) {
	l.summaries = append([]ConversationSummary(nil), summaries...)
}
