// Package chromem implements the content store on chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"

	chromem "github.com/philippgille/chromem-go"

	"github.com/43xlabs/convo-go-sdk/memory"
)

// Store indexes one session's reference material in its own collection.
// Embeddings are produced by the injected Embedder; chromem only stores and
// queries them.
type Store struct {
	sessionID string
	col       *chromem.Collection
	embedder  memory.Embedder
}

// New creates the content store for a session.
func New(db *chromem.DB, sessionID string, embedder memory.Embedder) (*Store, error) {
	col, err := db.GetOrCreateCollection(collectionName(sessionID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{
		sessionID: sessionID,
		col:       col,
		embedder:  embedder,
	}, nil
}

// Index embeds and stores chunks with parallel metadata. Chunk IDs derive
// from the session ID and the chunk's position in the batch, a pure function
// of the input, so re-indexing the same material overwrites rather than
// duplicates.
func (s *Store) Index(ctx context.Context, chunks []string, metadatas []map[string]string) ([]string, error) {
	if len(chunks) == 0 {
		log.Printf("[CHROMEM] No chunks to index for session %s", s.sessionID)
		return nil, nil
	}
	if metadatas != nil && len(metadatas) != len(chunks) {
		return nil, fmt.Errorf("metadata count %d does not match chunk count %d", len(metadatas), len(chunks))
	}

	ids := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return ids, fmt.Errorf("embed chunk %d: %w", i, err)
		}

		id := fmt.Sprintf("%s_%d", s.sessionID, i)
		doc := chromem.Document{
			ID:        id,
			Content:   chunk,
			Embedding: embedding,
		}
		if metadatas != nil {
			doc.Metadata = metadatas[i]
		}

		if err := s.col.AddDocument(ctx, doc); err != nil {
			return ids, fmt.Errorf("add document %s: %w", id, err)
		}
		ids = append(ids, id)
	}

	log.Printf("[CHROMEM] Indexed %d chunks for session %s", len(chunks), s.sessionID)
	return ids, nil
}

// Search returns the topK chunks closest to the query, ascending by distance.
// chromem rejects queries larger than the collection, so topK is clamped.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]memory.RetrievedChunk, error) {
	if n := s.col.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.col.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	chunks := make([]memory.RetrievedChunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, memory.RetrievedChunk{
			Text:     result.Content,
			Metadata: result.Metadata,
			// chromem reports cosine similarity, highest first; expose the
			// complementary distance so callers sort ascending.
			Distance: 1 - float64(result.Similarity),
		})
	}

	log.Printf("[CHROMEM] Query returned %d chunks for session %s", len(chunks), s.sessionID)
	return chunks, nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count() int {
	return s.col.Count()
}

func collectionName(sessionID string) string {
	return "session_" + sessionID
}
