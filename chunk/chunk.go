// Package chunk splits plain text into overlapping chunks for indexing.
//
// The splitter works recursively: it prefers paragraph boundaries, then line
// breaks, then sentence ends, then whitespace, only cutting mid-word when a
// single token exceeds the chunk size.
package chunk

import (
	"fmt"
	"strings"
)

// separators are tried in order; the first one present in the text wins for
// that recursion level.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "。", "！", "？", " ", ""}

// Splitter cuts text into chunks of at most Size runes with Overlap runes
// shared between adjacent chunks.
type Splitter struct {
	size    int
	overlap int
}

// Defaults for business-plan style prose.
const (
	DefaultSize    = 800
	DefaultOverlap = 100
)

// NewSplitter creates a splitter. Overlap must be smaller than size; a
// malformed configuration fails at construction, not at split time.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, size %d)", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split cuts text into chunks. Empty and whitespace-only input yields nil.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := s.split(text, separators)
	return s.merge(pieces)
}

// split recursively cuts text into pieces no longer than the chunk size,
// preferring the earliest separator that appears in the text.
func (s *Splitter) split(text string, seps []string) []string {
	if runeLen(text) <= s.size {
		return []string{text}
	}

	sep := seps[len(seps)-1]
	rest := seps
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		parts = fixedSplit(text, s.size)
	} else {
		for _, part := range strings.SplitAfter(text, sep) {
			if part != "" {
				parts = append(parts, part)
			}
		}
	}

	var out []string
	for _, part := range parts {
		if runeLen(part) > s.size {
			out = append(out, s.split(part, rest)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// merge greedily packs pieces into chunks up to the size budget, carrying the
// configured overlap from the tail of each emitted chunk into the next. The
// carried tail never exceeds the overlap budget and is dropped entirely when
// the incoming piece would not fit beside it.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	emit := func() {
		joined := strings.TrimSpace(strings.Join(current, ""))
		if joined != "" && (len(chunks) == 0 || chunks[len(chunks)-1] != joined) {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		if currentLen > 0 && currentLen+pieceLen > s.size {
			emit()
			for currentLen > s.overlap || (currentLen > 0 && currentLen+pieceLen > s.size) {
				currentLen -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		currentLen += pieceLen
	}
	if currentLen > 0 {
		emit()
	}
	return chunks
}

// fixedSplit is the last resort for text with no separators at all.
func fixedSplit(text string, size int) []string {
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func runeLen(s string) int {
	return len([]rune(s))
}
