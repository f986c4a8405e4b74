// Package agent runs conversational test agents: each agent holds a persona,
// a memory manager, and a completer, and answers one question per turn.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/43xlabs/convo-go-sdk/llm"
	"github.com/43xlabs/convo-go-sdk/memory"
)

// Agent is one simulated conversation participant. It is not safe for
// concurrent use; the service serializes turns per session.
type Agent struct {
	sessionID string
	persona   string
	mem       *memory.Manager
	completer llm.Completer
}

// New creates an agent over an already-constructed memory manager. The
// persona becomes the system prompt of every completion.
func New(sessionID, persona string, mem *memory.Manager, completer llm.Completer) *Agent {
	return &Agent{
		sessionID: sessionID,
		persona:   persona,
		mem:       mem,
		completer: completer,
	}
}

// SessionID returns the session this agent belongs to.
func (a *Agent) SessionID() string {
	return a.sessionID
}

// Memory exposes the agent's memory manager for stats and inspection.
func (a *Agent) Memory() *memory.Manager {
	return a.mem
}

// Answer runs one conversation turn: record the question, assemble the
// bounded context, complete, record the reply.
//
// A completion failure on the very first round propagates, since the caller
// learns immediately that the agent cannot run at all. On later rounds the
// conversation already carries state worth keeping, so the turn degrades to
// a textual apology and the session stays usable.
func (a *Agent) Answer(ctx context.Context, question string) (string, error) {
	userMsg := a.mem.RecordUser(ctx, question)
	contextText := a.mem.BuildContext(ctx, question)

	prompt := buildPrompt(contextText, question)

	reply, err := a.completer.Complete(ctx, a.persona, prompt)
	if err != nil {
		if userMsg.RoundNumber <= 1 {
			return "", fmt.Errorf("complete turn: %w", err)
		}
		log.Printf("[AGENT] Completion failed for session %s round %d: %v",
			a.sessionID, userMsg.RoundNumber, err)
		reply = "I'm sorry, I couldn't process that just now. Could you ask again?"
	}

	a.mem.RecordAssistant(ctx, reply)
	return reply, nil
}

// buildPrompt places the assembled memory context before the question so the
// model reads history, then the ask.
func buildPrompt(contextText, question string) string {
	var b strings.Builder
	if contextText != "" {
		b.WriteString(contextText)
		b.WriteString("\n\n")
	}
	b.WriteString("## Current question\n\n")
	b.WriteString(question)
	return b.String()
}
