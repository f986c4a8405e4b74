// Package cached wraps any embedder with a ristretto read-through cache.
//
// Long sessions re-embed the same questions and chunks constantly; caching
// the text→vector mapping removes that cost without touching the embedder.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/43xlabs/convo-go-sdk/memory"
)

// Embedder decorates an inner embedder with an in-process vector cache.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache bounded to maxBytes of vector data.
func New(inner memory.Embedder, maxBytes int64) (*Embedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000, // ~10x expected live entries
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector when present, otherwise embeds and caches.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Cost is the vector's byte size; admission is best-effort.
	e.cache.Set(text, embedding, int64(len(embedding)*4))
	return embedding, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Tests use this to make
// hits deterministic.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache.
func (e *Embedder) Close() {
	e.cache.Close()
}
