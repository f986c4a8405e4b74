package memory

// Snapshot is the externalized form of a session's memory state. Field shapes
// mirror the in-memory entities exactly so a reload reconstructs an equivalent
// Manager (equal messages, summaries, and round counter — not the same object
// identity).
type Snapshot struct {
	RoundCounter      int                   `json:"round_counter"`
	LongTermSummaries []ConversationSummary `json:"long_term_summaries"`
	ShortTermMessages []Message             `json:"short_term_messages"`
}
