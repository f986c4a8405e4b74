package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	chromemgo "github.com/philippgille/chromem-go"

	"github.com/43xlabs/convo-go-sdk/chunk"
	"github.com/43xlabs/convo-go-sdk/config"
	"github.com/43xlabs/convo-go-sdk/llm"
	"github.com/43xlabs/convo-go-sdk/memory"
	chromemstore "github.com/43xlabs/convo-go-sdk/memory/store/chromem"
	"github.com/43xlabs/convo-go-sdk/session"
)

// Deps are the external capabilities a Service needs. Completer and Embedder
// are required; the rest are optional and degrade gracefully when absent.
type Deps struct {
	// Completer answers agent turns and, when Summarizer below is unset,
	// also powers compaction summaries.
	Completer llm.Completer

	// Embedder turns text into vectors for indexing and retrieval.
	Embedder memory.Embedder

	// VectorDB holds per-session collections of indexed material. Nil
	// disables retrieval entirely.
	VectorDB *chromemgo.DB

	// Snapshots persists memory state across restarts. Nil keeps sessions
	// in-process only.
	Snapshots memory.SnapshotStore

	// Summarizer overrides the default LLM summarizer built on Completer.
	Summarizer memory.Summarizer
}

// Service is the process-wide front door: it mints sessions, indexes their
// reference material, caches live agents with LRU and TTL eviction, and
// routes questions to them.
type Service struct {
	cfg      config.Config
	deps     Deps
	cache    *session.Cache[*Agent]
	splitter *chunk.Splitter
}

// NewService validates the configuration, builds the session cache, and
// starts its background sweeper.
func NewService(cfg config.Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Completer == nil {
		return nil, fmt.Errorf("a completer is required")
	}
	if deps.VectorDB != nil && deps.Embedder == nil {
		return nil, fmt.Errorf("a vector database requires an embedder")
	}

	splitter, err := chunk.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	cache := session.NewCache[*Agent](cfg.MaxCacheSize, time.Duration(cfg.TTLSeconds)*time.Second)
	cache.StartSweeper(time.Duration(cfg.SweepIntervalSeconds) * time.Second)

	return &Service{
		cfg:      cfg,
		deps:     deps,
		cache:    cache,
		splitter: splitter,
	}, nil
}

// Start mints a session, indexes its reference material, and caches a ready
// agent. The persona becomes the agent's system prompt; materials are
// chunked and indexed for retrieval.
func (s *Service) Start(ctx context.Context, persona string, materials []string) (string, error) {
	sessionID := uuid.NewString()

	var store memory.ContentStore
	if s.deps.VectorDB != nil {
		cs, err := chromemstore.New(s.deps.VectorDB, sessionID, s.deps.Embedder)
		if err != nil {
			return "", fmt.Errorf("create content store: %w", err)
		}
		store = cs

		// One batch across all materials keeps chunk IDs a pure function of
		// the session and the chunk's overall position.
		var allChunks []string
		var allMetadatas []map[string]string
		for i, material := range materials {
			chunks := s.splitter.Split(material)
			for _, chunk := range chunks {
				allChunks = append(allChunks, chunk)
				allMetadatas = append(allMetadatas, map[string]string{"material": fmt.Sprintf("%d", i)})
			}
		}
		if len(allChunks) > 0 {
			if _, err := cs.Index(ctx, allChunks, allMetadatas); err != nil {
				return "", fmt.Errorf("index materials: %w", err)
			}
		}
	}

	summarizer := s.deps.Summarizer
	if summarizer == nil {
		summarizer = memory.NewLLMSummarizer(s.deps.Completer)
	}

	opts := []memory.Option{memory.WithSummarizer(summarizer)}
	if store != nil {
		opts = append(opts, memory.WithContentStore(store))
	}
	if s.deps.Snapshots != nil {
		opts = append(opts, memory.WithSnapshotStore(s.deps.Snapshots))
	}

	mem := memory.NewManager(sessionID, s.memoryConfig(), opts...)
	s.cache.Put(sessionID, New(sessionID, persona, mem, s.deps.Completer))

	log.Printf("[AGENT] Started session %s (%d materials)", sessionID, len(materials))
	return sessionID, nil
}

// memoryConfig projects the service configuration onto the memory knobs.
func (s *Service) memoryConfig() *memory.Config {
	return &memory.Config{
		MaxShortTermRounds:    s.cfg.MaxShortTermRounds,
		CompressRounds:        s.cfg.CompressRounds,
		RetrievalTopK:         s.cfg.RetrievalTopK,
		LongTermSummaryWindow: s.cfg.LongTermSummaryWindow,
		ContextCharCeiling:    s.cfg.ContextCharCeiling,
		MaxTranscriptMessages: s.cfg.MaxTranscriptMessages,
	}
}

// Resume rebuilds an agent for a previously started session ID, reloading
// its memory from the snapshot store. Material indexed under the ID is
// reused, not re-indexed.
func (s *Service) Resume(ctx context.Context, sessionID, persona string) error {
	if s.deps.Snapshots == nil {
		return fmt.Errorf("resume session %s: no snapshot store configured", sessionID)
	}

	var store memory.ContentStore
	if s.deps.VectorDB != nil {
		cs, err := chromemstore.New(s.deps.VectorDB, sessionID, s.deps.Embedder)
		if err != nil {
			return fmt.Errorf("open content store: %w", err)
		}
		store = cs
	}

	summarizer := s.deps.Summarizer
	if summarizer == nil {
		summarizer = memory.NewLLMSummarizer(s.deps.Completer)
	}

	opts := []memory.Option{
		memory.WithSummarizer(summarizer),
		memory.WithSnapshotStore(s.deps.Snapshots),
	}
	if store != nil {
		opts = append(opts, memory.WithContentStore(store))
	}

	mem := memory.NewManager(sessionID, s.memoryConfig(), opts...)
	s.cache.Put(sessionID, New(sessionID, persona, mem, s.deps.Completer))

	log.Printf("[AGENT] Resumed session %s at round %d", sessionID, mem.CurrentRound())
	return nil
}

// Answer routes one question to the session's agent. An unknown or expired
// session returns session.ErrNotFound; callers start a new session.
func (s *Service) Answer(ctx context.Context, sessionID, question string) (string, error) {
	ag, err := s.cache.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", sessionID, err)
	}
	return ag.Answer(ctx, question)
}

// Agent returns a live session's agent for inspection. Unknown or expired
// sessions report session.ErrNotFound.
func (s *Service) Agent(sessionID string) (*Agent, error) {
	return s.cache.Get(sessionID)
}

// Stop removes a session from the cache. Persisted snapshots survive so the
// session can be resumed under the same ID later.
func (s *Service) Stop(sessionID string) {
	s.cache.Remove(sessionID)
}

// ActiveSessions lists live session IDs, most recently used first.
func (s *Service) ActiveSessions() []string {
	return s.cache.ActiveSessions()
}

// Stats returns the session cache counters.
func (s *Service) Stats() session.Stats {
	return s.cache.Stats()
}

// Close stops the background sweeper. Cached agents are dropped; persisted
// sessions remain loadable.
func (s *Service) Close() {
	s.cache.Close()
}
