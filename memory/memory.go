package memory

import "context"

// ContentStore indexes text chunks and answers nearest-neighbor queries.
// Implementations: memory/store/chromem.
//
// A nil ContentStore on the Manager is valid: retrieval degrades to an empty
// block and the turn still completes.
type ContentStore interface {
	// Index embeds and stores chunks with parallel metadata, returning the
	// assigned chunk IDs. IDs are deterministic per session and position so
	// re-indexing the same material is safe.
	Index(ctx context.Context, chunks []string, metadatas []map[string]string) ([]string, error)

	// Search returns the topK chunks most relevant to the query, ordered by
	// ascending distance.
	Search(ctx context.Context, query string, topK int) ([]RetrievedChunk, error)

	// Count returns the number of chunks indexed.
	Count() int
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), onnx (local SDK), cached (ristretto
// decorator over either).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Summarizer compresses a conversation transcript into a short narrative and
// a list of key facts. May fail; the Manager falls back to a rule-based
// summary rather than failing the turn.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (summary string, keyFacts []string, err error)
}

// SnapshotStore persists per-session memory snapshots.
// Implementations: persist.FileStore, persist.BadgerStore.
//
// Load returns (nil, nil) when no snapshot exists for the session.
type SnapshotStore interface {
	Save(sessionID string, snap *Snapshot) error
	Load(sessionID string) (*Snapshot, error)
}
