// Package memory implements the three-tier memory model that keeps a
// long-running conversation inside a bounded context budget.
//
// Tiers:
//   - ShortTermMemory: ordered log of the most recent rounds (one round =
//     one user question plus its assistant reply)
//   - LongTermMemory: append-only log of compaction summaries
//   - ContentStore: vector-indexed reference material, queried per question
//
// The Manager orchestrates all three: it assigns round numbers, compacts the
// oldest rounds into a summary when the short-term window would overflow, and
// assembles the bounded context (summaries + transcript + retrieved chunks)
// handed to the next model call.
//
// Every optional collaborator degrades independently: a missing ContentStore
// yields an empty retrieval block, a failing Summarizer falls back to a
// rule-based summary, and a failing SnapshotStore is logged without aborting
// the in-memory update.
//
// Local SDK implementation:
//   - chromem-go content store (embedded vector database)
//   - ONNX embedder with all-MiniLM-L6-v2 (offline), or the mock embedder
//   - anthropic-backed Summarizer when an API key is available
//
// Production swaps happen behind the same interfaces (pgvector store,
// hosted embedder).
package memory
