package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/43xlabs/convo-go-sdk/llm"
)

// Character budgets for the rule-based summary path.
const (
	questionBudget = 80  // per Q line in a Q/A pair
	answerBudget   = 120 // per A line in a Q/A pair
	maxPairs       = 3   // Q/A pairs kept in the narrative
	factBudget     = 150 // per extracted key fact
	maxFacts       = 5   // key facts kept
	fallbackFacts  = 3   // user questions kept when no facts found
)

// ruleSummary builds a ConversationSummary from the raw messages without any
// model call. It is the fallback for every summarizer failure, so it must
// never fail itself.
//
// Narrative: up to maxPairs question/answer pairs, truncated. Key facts:
// sentences from assistant replies that contain a digit (a cheap proxy for
// quantitative statements), deduplicated; if none, truncated user questions.
func ruleSummary(messages []Message, rr RoundRange) (string, []string) {
	var pairs []string
	var question string
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			question = msg.Content
		case RoleAssistant:
			if question == "" {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s",
				truncateRunes(question, questionBudget),
				truncateRunes(msg.Content, answerBudget)))
			question = ""
		}
	}
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}

	summary := fmt.Sprintf("Rounds %d-%d covered %d exchanges.", rr.Start, rr.End, len(pairs))
	if len(pairs) > 0 {
		summary += "\n" + strings.Join(pairs, "\n\n")
	}

	facts := extractKeyFacts(messages)
	if len(facts) == 0 {
		for _, msg := range messages {
			if msg.Role != RoleUser {
				continue
			}
			facts = append(facts, truncateRunes(msg.Content, 100))
			if len(facts) >= fallbackFacts {
				break
			}
		}
	}

	return summary, facts
}

// extractKeyFacts pulls digit-bearing sentences out of assistant replies.
func extractKeyFacts(messages []Message) []string {
	var facts []string
	seen := make(map[string]struct{})

	for _, msg := range messages {
		if msg.Role != RoleAssistant {
			continue
		}
		for _, sentence := range splitSentences(msg.Content) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" || !containsDigit(sentence) {
				continue
			}
			fact := truncateRunes(sentence, factBudget)
			if _, ok := seen[fact]; ok {
				continue
			}
			seen[fact] = struct{}{}
			facts = append(facts, fact)
			if len(facts) >= maxFacts {
				return facts
			}
		}
	}
	return facts
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '\n', '。', '！', '？':
			return true
		}
		return false
	})
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// truncateRunes truncates s to at most maxLen runes, appending "..." when it
// had to cut.
func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// LLM-backed summarizer limits.
const (
	llmSummaryBudget = 300 // runes kept from the model response
	llmMaxFacts      = 3
)

// LLMSummarizer compresses transcripts through a completion model. The model
// is asked for pipe-delimited facts so the response parses without JSON.
type LLMSummarizer struct {
	completer llm.Completer
}

// NewLLMSummarizer creates a summarizer backed by the given completer.
func NewLLMSummarizer(completer llm.Completer) *LLMSummarizer {
	return &LLMSummarizer{completer: completer}
}

const summarizeSystemPrompt = "You compress conversation transcripts. " +
	"Extract only the most important facts, keep concrete numbers and metrics."

// Summarize sends the transcript to the model and parses the pipe-delimited
// response. Errors propagate so the caller can fall back to ruleSummary.
func (s *LLMSummarizer) Summarize(ctx context.Context, transcript string) (string, []string, error) {
	prompt := fmt.Sprintf(`Compress the following conversation into a minimal summary (under 150 characters):

%s

Rules:
1. Extract only the 2-3 most important facts.
2. Keep concrete numbers and metrics (e.g. 350k users, 50ms latency).
3. Separate facts with | characters.
4. Format: fact 1 | fact 2 | fact 3

Output the summary directly, nothing else:`, transcript)

	resp, err := s.completer.Complete(ctx, summarizeSystemPrompt, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("summarize transcript: %w", err)
	}

	content := strings.TrimSpace(resp)
	summary := truncateRunes(content, llmSummaryBudget)

	var facts []string
	for _, part := range strings.Split(content, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		facts = append(facts, part)
		if len(facts) >= llmMaxFacts {
			break
		}
	}

	log.Printf("[MEMORY] LLM summary: %d chars, %d facts", len(summary), len(facts))
	return summary, facts, nil
}
