package memory

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func msg(role Role, content string, round int) Message {
	return NewMessage(role, content, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), round)
}

func TestTranscript(t *testing.T) {
	messages := []Message{
		msg(RoleUser, "hello", 1),
		msg(RoleAssistant, "hi there", 1),
	}

	got := Transcript(messages)
	want := "User: hello\n\nAssistant: hi there"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTruncateMessagesPreservesPairing(t *testing.T) {
	var messages []Message
	for round := 1; round <= 4; round++ {
		messages = append(messages,
			msg(RoleUser, "q", round),
			msg(RoleAssistant, "a", round))
	}

	// Ideal cutoff of 3 would start mid-round; the boundary scan must move
	// the cut to just after an assistant turn.
	got := TruncateMessages(messages, 3)
	if len(got) == 0 {
		t.Fatal("expected messages back")
	}
	if got[0].Role != RoleUser {
		t.Errorf("truncated list must start with a user turn, got %s", got[0].Role)
	}
	if len(got) > 4 {
		t.Errorf("expected at most 4 messages after cut, got %d", len(got))
	}
}

func TestTruncateMessagesNoopWhenUnderBudget(t *testing.T) {
	messages := []Message{msg(RoleUser, "q", 1)}
	if got := TruncateMessages(messages, 10); len(got) != 1 {
		t.Errorf("expected untouched list, got %d messages", len(got))
	}
	if got := TruncateMessages(messages, 0); len(got) != 1 {
		t.Errorf("expected max=0 to disable truncation, got %d messages", len(got))
	}
}

func TestTruncateMessagesWithoutSafeBoundary(t *testing.T) {
	// All user turns: no assistant boundary exists, so the full list returns.
	messages := []Message{
		msg(RoleUser, "q1", 1),
		msg(RoleUser, "q2", 2),
		msg(RoleUser, "q3", 3),
	}
	if got := TruncateMessages(messages, 1); len(got) != 3 {
		t.Errorf("expected full list with no safe boundary, got %d", len(got))
	}
}

func TestAssembleContextSectionOrder(t *testing.T) {
	sums := []string{renderSummaryBlock(1, ConversationSummary{
		Summary:    "earlier discussion",
		KeyFacts:   []string{"fact A"},
		RoundRange: RoundRange{Start: 1, End: 2},
	})}
	messages := []Message{msg(RoleUser, "current question", 3)}
	chunks := renderChunkBlocks([]RetrievedChunk{{Text: "reference text"}})

	out := assembleContext(sums, messages, chunks, 0)

	history := strings.Index(out, "## Conversation history")
	recent := strings.Index(out, "## Recent conversation")
	material := strings.Index(out, "## Relevant material")
	if history == -1 || recent == -1 || material == -1 {
		t.Fatalf("missing section in output:\n%s", out)
	}
	if !(history < recent && recent < material) {
		t.Errorf("sections out of order: history=%d recent=%d material=%d", history, recent, material)
	}
}

func TestAssembleContextDropsOldestSummariesFirst(t *testing.T) {
	wide := strings.Repeat("x", 200)
	sums := []string{
		renderSummaryBlock(1, ConversationSummary{Summary: "OLDEST " + wide, RoundRange: RoundRange{Start: 1, End: 2}}),
		renderSummaryBlock(2, ConversationSummary{Summary: "NEWEST " + wide, RoundRange: RoundRange{Start: 3, End: 4}}),
	}
	messages := []Message{msg(RoleUser, "q", 5)}

	out := assembleContext(sums, messages, nil, 350)

	if strings.Contains(out, "OLDEST") {
		t.Error("expected the oldest summary to be dropped first")
	}
	if !strings.Contains(out, truncationMarker) {
		t.Error("expected truncation marker after dropping content")
	}
	if !strings.Contains(out, "User: q") {
		t.Error("transcript must survive summary dropping")
	}
}

func TestAssembleContextDropsOldRoundsBeforeChunks(t *testing.T) {
	var messages []Message
	for round := 1; round <= 3; round++ {
		messages = append(messages,
			msg(RoleUser, fmt.Sprintf("q%d %s", round, strings.Repeat("x", 100)), round),
			msg(RoleAssistant, fmt.Sprintf("a%d %s", round, strings.Repeat("y", 100)), round))
	}
	chunks := renderChunkBlocks([]RetrievedChunk{{Text: "keep me"}})

	out := assembleContext(nil, messages, chunks, 380)

	if !strings.Contains(out, "keep me") {
		t.Error("chunks should outlive old short-term rounds")
	}
	if strings.Contains(out, "q1 ") {
		t.Error("expected the oldest round to be dropped")
	}
	if !strings.Contains(out, "q3 ") {
		t.Error("expected the newest round to survive")
	}
	if !strings.Contains(out, truncationMarker) {
		t.Error("expected truncation marker")
	}
}

func TestAssembleContextKeepsLastRound(t *testing.T) {
	messages := []Message{
		msg(RoleUser, strings.Repeat("q", 500), 1),
		msg(RoleAssistant, strings.Repeat("a", 500), 1),
	}

	// Ceiling far below one round: everything droppable goes, the last round
	// stays with the marker.
	out := assembleContext(nil, messages, nil, 100)

	if !strings.Contains(out, truncationMarker) {
		t.Error("expected truncation marker")
	}
	if !strings.Contains(out, "q") {
		t.Error("the last round must never be dropped")
	}
}

func TestAssembleContextNoCeiling(t *testing.T) {
	messages := []Message{msg(RoleUser, "q", 1)}
	out := assembleContext(nil, messages, nil, 0)
	if strings.Contains(out, truncationMarker) {
		t.Error("no marker expected without a ceiling")
	}
}

func TestRenderSummaryBlockCapsFacts(t *testing.T) {
	block := renderSummaryBlock(1, ConversationSummary{
		Summary:    "s",
		KeyFacts:   []string{"f1", "f2", "f3", "f4", "f5"},
		RoundRange: RoundRange{Start: 1, End: 3},
	})

	if strings.Contains(block, "f4") {
		t.Error("expected at most 3 facts rendered")
	}
	if !strings.Contains(block, "rounds 1-3") {
		t.Errorf("expected round range in header, got %q", block)
	}
}
