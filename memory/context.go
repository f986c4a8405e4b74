package memory

import (
	"fmt"
	"strings"
)

// Transcript renders messages as a plain-text conversation, in order.
func Transcript(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		speaker := "User"
		if msg.Role == RoleAssistant {
			speaker = "Assistant"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", speaker, msg.Content))
	}
	return strings.Join(parts, "\n\n")
}

// TruncateMessages bounds a message list to roughly max entries without ever
// splitting a round: the cut lands immediately after an assistant turn, found
// by scanning backward from the ideal cutoff. When no safe boundary exists the
// full list is returned.
//
// This is the explicit replacement for trimming message history inside the
// model-client internals; context assembly applies it as an ordinary function.
func TruncateMessages(messages []Message, max int) []Message {
	if max <= 0 || len(messages) <= max {
		return messages
	}

	idealStart := len(messages) - max
	for i := idealStart; i > 0; i-- {
		if messages[i-1].Role == RoleAssistant {
			return messages[i:]
		}
	}
	return messages
}

// truncationMarker is prepended to the assembled context whenever older
// content had to be dropped to honor the character ceiling.
const truncationMarker = "[earlier context truncated]"

// renderSummaryBlock renders one long-term summary as a compact block with at
// most three key facts.
func renderSummaryBlock(index int, s ConversationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Summary %d (rounds %d-%d)\n%s\n", index, s.RoundRange.Start, s.RoundRange.End, s.Summary)
	if len(s.KeyFacts) > 0 {
		b.WriteString("Key facts:\n")
		facts := s.KeyFacts
		if len(facts) > 3 {
			facts = facts[:3]
		}
		for _, fact := range facts {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
	}
	return b.String()
}

// renderChunkBlocks renders retrieved material, one block per chunk.
func renderChunkBlocks(chunks []RetrievedChunk) []string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("### Material %d\n%s\n", i+1, chunk.Text))
	}
	return blocks
}

// assembleContext concatenates the three context sections and enforces the
// rune ceiling. Oldest long-term blocks go first, then the oldest short-term
// rounds, then trailing retrieval blocks; a marker records any loss. The
// ceiling is best-effort for the final round: the current question is never
// dropped, so when that round alone exceeds the ceiling the output runs over.
func assembleContext(summaryBlocks []string, messages []Message, chunkBlocks []string, ceiling int) string {
	build := func(sums []string, msgs []Message, chunks []string, truncated bool) string {
		var b strings.Builder
		if truncated {
			b.WriteString(truncationMarker + "\n\n")
		}
		if len(sums) > 0 {
			b.WriteString("## Conversation history\n")
			b.WriteString(strings.Join(sums, "\n"))
			b.WriteString("\n")
		}
		if len(msgs) > 0 {
			b.WriteString("## Recent conversation\n")
			b.WriteString(Transcript(msgs))
			b.WriteString("\n")
		}
		if len(chunks) > 0 {
			b.WriteString("\n## Relevant material\n")
			b.WriteString(strings.Join(chunks, "\n"))
		}
		return b.String()
	}

	out := build(summaryBlocks, messages, chunkBlocks, false)
	if ceiling <= 0 || len([]rune(out)) <= ceiling {
		return out
	}

	truncated := false
	for len([]rune(out)) > ceiling {
		switch {
		case len(summaryBlocks) > 0:
			summaryBlocks = summaryBlocks[1:]
		case countRounds(messages) > 1:
			messages = dropOldestRound(messages)
		case len(chunkBlocks) > 0:
			chunkBlocks = chunkBlocks[:len(chunkBlocks)-1]
		default:
			return build(nil, messages, nil, true)
		}
		truncated = true
		out = build(summaryBlocks, messages, chunkBlocks, truncated)
	}
	return out
}

func countRounds(messages []Message) int {
	rounds := make(map[int]struct{})
	for _, msg := range messages {
		rounds[msg.RoundNumber] = struct{}{}
	}
	return len(rounds)
}

func dropOldestRound(messages []Message) []Message {
	if len(messages) == 0 {
		return messages
	}
	oldest := messages[0].RoundNumber
	i := 0
	for i < len(messages) && messages[i].RoundNumber == oldest {
		i++
	}
	return messages[i:]
}
