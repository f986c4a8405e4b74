package memory

import (
	"context"
	"log"
	"time"
)

// Config holds the memory tuning knobs. All fields have working defaults;
// zero values fall back to DefaultConfig at construction.
type Config struct {
	// MaxShortTermRounds is the short-term window size in complete rounds.
	MaxShortTermRounds int

	// CompressRounds is how many of the oldest rounds one compaction folds
	// into a single summary.
	CompressRounds int

	// RetrievalTopK is the number of content chunks fetched per query.
	RetrievalTopK int

	// LongTermSummaryWindow is how many of the most recent summaries context
	// assembly includes.
	LongTermSummaryWindow int

	// ContextCharCeiling bounds the assembled context, in runes. 0 disables
	// the ceiling.
	ContextCharCeiling int

	// MaxTranscriptMessages bounds the short-term transcript passed into
	// context assembly. 0 means unlimited.
	MaxTranscriptMessages int
}

// DefaultConfig returns sensible defaults for local use.
var DefaultConfig = &Config{
	MaxShortTermRounds:    5,
	CompressRounds:        3,
	RetrievalTopK:         3,
	LongTermSummaryWindow: 5,
	ContextCharCeiling:    8000,
	MaxTranscriptMessages: 0,
}

// Manager orchestrates the three memory tiers for one session. It owns the
// compression trigger and algorithm and exposes the add-turn / get-context
// contract the agent runtime works against.
//
// A Manager is driven by one logical conversation turn at a time; callers
// serialize Answer calls per session. It holds no internal lock.
type Manager struct {
	sessionID  string
	cfg        *Config
	short      *ShortTermMemory
	long       *LongTermMemory
	store      ContentStore
	summarizer Summarizer
	snapshots  SnapshotStore
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithContentStore attaches the retrieval backend. Optional; without it the
// retrieval block of every context is empty.
func WithContentStore(store ContentStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithSummarizer attaches an external summarizer. Optional; without it (or on
// its failure) compaction uses the rule-based path.
func WithSummarizer(s Summarizer) Option {
	return func(m *Manager) { m.summarizer = s }
}

// WithSnapshotStore attaches persistence. Optional; without it memory lives
// only in-process.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(m *Manager) { m.snapshots = s }
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates the memory manager for a session and, when persistence
// is configured, reloads any prior snapshot.
func NewManager(sessionID string, cfg *Config, opts ...Option) *Manager {
	if cfg == nil {
		cfg = DefaultConfig
	}

	m := &Manager{
		sessionID: sessionID,
		cfg:       cfg,
		long:      NewLongTermMemory(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.short = NewShortTermMemory(cfg.MaxShortTermRounds, m.now)

	if m.snapshots != nil {
		snap, err := m.snapshots.Load(sessionID)
		if err != nil {
			log.Printf("[MEMORY] Snapshot load failed for session %s: %v", sessionID, err)
		} else if snap != nil {
			m.short.restore(snap.ShortTermMessages, snap.RoundCounter)
			m.long.restore(snap.LongTermSummaries)
			log.Printf("[MEMORY] Restored session %s: round=%d, messages=%d, summaries=%d",
				sessionID, snap.RoundCounter, len(snap.ShortTermMessages), len(snap.LongTermSummaries))
		}
	}

	return m
}

// SessionID returns the session this manager belongs to.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// CurrentRound returns the highest round number assigned so far.
func (m *Manager) CurrentRound() int {
	return m.short.CurrentRound()
}

// RecordUser opens a new round with the user's question. When the short-term
// window is already full, the oldest rounds are compacted first so the window
// never exceeds its bound.
func (m *Manager) RecordUser(ctx context.Context, content string) Message {
	if m.short.IsFull() {
		log.Printf("[MEMORY] Short-term memory full, compacting before round %d", m.short.CurrentRound()+1)
		m.compact(ctx)
	}
	return m.short.AddMessage(RoleUser, content)
}

// RecordAssistant closes the current round with the assistant's reply and
// externalizes a snapshot. Persistence failure is logged, never fatal.
func (m *Manager) RecordAssistant(ctx context.Context, content string) Message {
	msg := m.short.AddMessage(RoleAssistant, content)
	m.saveSnapshot()
	return msg
}

// compact folds the oldest CompressRounds rounds into one long-term summary.
// Short-term messages are removed only after the summary exists, so a failing
// summarizer can never lose conversation state.
func (m *Manager) compact(ctx context.Context) {
	oldest := m.short.OldestRounds(m.cfg.CompressRounds)
	if len(oldest) == 0 {
		log.Printf("[MEMORY] Nothing to compact")
		return
	}

	rr := roundRangeOf(oldest)

	var summary string
	var facts []string
	if m.summarizer != nil {
		var err error
		summary, facts, err = m.summarizer.Summarize(ctx, Transcript(oldest))
		if err != nil {
			log.Printf("[MEMORY] Summarizer failed, using rule-based summary: %v", err)
			summary, facts = ruleSummary(oldest, rr)
		}
	} else {
		summary, facts = ruleSummary(oldest, rr)
	}

	m.long.Add(ConversationSummary{
		Summary:    summary,
		KeyFacts:   facts,
		RoundRange: rr,
		Timestamp:  m.now(),
	})
	m.short.RemoveRounds(roundSet(oldest))

	log.Printf("[MEMORY] Compacted rounds %d-%d (%d messages, %d facts)",
		rr.Start, rr.End, len(oldest), len(facts))
}

// BuildContext assembles the bounded prompt context for the next model call:
// recent long-term summaries, the short-term transcript, and content chunks
// relevant to the query, in that order. Retrieval failure degrades to an
// empty block.
func (m *Manager) BuildContext(ctx context.Context, query string) string {
	window := m.long.Last(m.cfg.LongTermSummaryWindow)
	first := m.long.Count() - len(window) + 1
	summaryBlocks := make([]string, 0, len(window))
	for i, s := range window {
		summaryBlocks = append(summaryBlocks, renderSummaryBlock(first+i, s))
	}

	messages := m.short.AllMessages()
	if m.cfg.MaxTranscriptMessages > 0 {
		messages = TruncateMessages(messages, m.cfg.MaxTranscriptMessages)
	}

	var chunkBlocks []string
	if m.store != nil {
		chunks, err := m.store.Search(ctx, query, m.cfg.RetrievalTopK)
		if err != nil {
			log.Printf("[MEMORY] Retrieval failed, continuing without material: %v", err)
		} else {
			chunkBlocks = renderChunkBlocks(chunks)
		}
	}

	return assembleContext(summaryBlocks, messages, chunkBlocks, m.cfg.ContextCharCeiling)
}

// Summaries returns every long-term summary in round order.
func (m *Manager) Summaries() []ConversationSummary {
	return m.long.All()
}

// Messages returns the short-term transcript snapshot.
func (m *Manager) Messages() []Message {
	return m.short.AllMessages()
}

// Snapshot captures the persistable memory state.
func (m *Manager) Snapshot() *Snapshot {
	return &Snapshot{
		RoundCounter:      m.short.CurrentRound(),
		LongTermSummaries: m.long.All(),
		ShortTermMessages: m.short.AllMessages(),
	}
}

func (m *Manager) saveSnapshot() {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Save(m.sessionID, m.Snapshot()); err != nil {
		log.Printf("[MEMORY] Snapshot save failed for session %s: %v", m.sessionID, err)
	}
}

// Stats reports the memory footprint for monitoring.
type Stats struct {
	ShortTermRounds   int
	ShortTermMessages int
	LongTermSummaries int
	ContentChunks     int
}

// MemoryStats returns current tier sizes. A missing or failing content store
// reports zero chunks.
func (m *Manager) MemoryStats() Stats {
	chunks := 0
	if m.store != nil {
		chunks = m.store.Count()
	}
	return Stats{
		ShortTermRounds:   m.short.RoundCount(),
		ShortTermMessages: len(m.short.AllMessages()),
		LongTermSummaries: m.long.Count(),
		ContentChunks:     chunks,
	}
}

func roundRangeOf(messages []Message) RoundRange {
	rr := RoundRange{Start: messages[0].RoundNumber, End: messages[0].RoundNumber}
	for _, msg := range messages[1:] {
		if msg.RoundNumber < rr.Start {
			rr.Start = msg.RoundNumber
		}
		if msg.RoundNumber > rr.End {
			rr.End = msg.RoundNumber
		}
	}
	return rr
}

func roundSet(messages []Message) map[int]struct{} {
	set := make(map[int]struct{})
	for _, msg := range messages {
		set[msg.RoundNumber] = struct{}{}
	}
	return set
}
