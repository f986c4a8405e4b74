package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/43xlabs/convo-go-sdk/config"
	"github.com/43xlabs/convo-go-sdk/llm"
	"github.com/43xlabs/convo-go-sdk/memory"
	"github.com/43xlabs/convo-go-sdk/memory/embedder/mock"
	"github.com/43xlabs/convo-go-sdk/session"
)

func echoCompleter() llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		return "echo: " + prompt[strings.LastIndex(prompt, "\n")+1:], nil
	})
}

// memorySnapshots is a map-backed snapshot store shared across managers.
type memorySnapshots struct {
	saved map[string]*memory.Snapshot
}

func (m *memorySnapshots) Save(sessionID string, snap *memory.Snapshot) error {
	m.saved[sessionID] = snap
	return nil
}

func (m *memorySnapshots) Load(sessionID string) (*memory.Snapshot, error) {
	return m.saved[sessionID], nil
}

func newTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	if deps.Completer == nil {
		deps.Completer = echoCompleter()
	}
	svc, err := NewService(config.Default(), deps)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(config.Default(), Deps{}); err == nil {
		t.Error("expected error without a completer")
	}

	bad := config.Default()
	bad.ChunkOverlap = bad.ChunkSize
	if _, err := NewService(bad, Deps{Completer: echoCompleter()}); err == nil {
		t.Error("expected malformed chunking config to fail fast")
	}

	deps := Deps{Completer: echoCompleter(), VectorDB: chromemgo.NewDB()}
	if _, err := NewService(config.Default(), deps); err == nil {
		t.Error("expected error for vector db without embedder")
	}
}

func TestStartAndAnswer(t *testing.T) {
	svc := newTestService(t, Deps{})
	ctx := context.Background()

	id, err := svc.Start(ctx, "persona", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id == "" {
		t.Fatal("expected a session ID")
	}

	reply, err := svc.Answer(ctx, id, "hello there")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(reply, "hello there") {
		t.Errorf("expected the echo completer output, got %q", reply)
	}
}

func TestAnswerUnknownSession(t *testing.T) {
	svc := newTestService(t, Deps{})

	_, err := svc.Answer(context.Background(), "no-such-session", "hi")
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session.ErrNotFound, got %v", err)
	}
}

func TestStartIndexesMaterials(t *testing.T) {
	svc := newTestService(t, Deps{
		VectorDB: chromemgo.NewDB(),
		Embedder: mock.New(),
	})
	ctx := context.Background()

	material := strings.Repeat("The market grows 20 percent a year. ", 50)
	id, err := svc.Start(ctx, "persona", []string{material})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ag, err := svc.Agent(id)
	if err != nil {
		t.Fatalf("agent: %v", err)
	}
	stats := ag.Memory().MemoryStats()
	if stats.ContentChunks == 0 {
		t.Error("expected indexed chunks after start")
	}
}

func TestRetrievalReachesPrompt(t *testing.T) {
	var lastPrompt string
	completer := llm.CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		lastPrompt = prompt
		return "ok", nil
	})
	svc := newTestService(t, Deps{
		Completer: completer,
		VectorDB:  chromemgo.NewDB(),
		Embedder:  mock.New(),
	})
	ctx := context.Background()

	id, err := svc.Start(ctx, "persona", []string{"The flux capacitor needs 1.21 gigawatts."})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Answer(ctx, id, "how much power"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if !strings.Contains(lastPrompt, "## Relevant material") {
		t.Error("expected retrieved material in the prompt")
	}
	if !strings.Contains(lastPrompt, "1.21 gigawatts") {
		t.Error("expected the indexed chunk in the prompt")
	}
}

func TestStopRemovesSession(t *testing.T) {
	svc := newTestService(t, Deps{})
	ctx := context.Background()

	id, err := svc.Start(ctx, "persona", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	svc.Stop(id)
	if _, err := svc.Answer(ctx, id, "hi"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected stopped session to miss, got %v", err)
	}
}

func TestResumeReloadsMemory(t *testing.T) {
	snaps := &memorySnapshots{saved: make(map[string]*memory.Snapshot)}
	svc := newTestService(t, Deps{Snapshots: snaps})
	ctx := context.Background()

	id, err := svc.Start(ctx, "persona", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Answer(ctx, id, "remember this"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	svc.Stop(id)
	if err := svc.Resume(ctx, id, "persona"); err != nil {
		t.Fatalf("resume: %v", err)
	}

	ag, err := svc.Agent(id)
	if err != nil {
		t.Fatalf("agent after resume: %v", err)
	}
	if ag.Memory().CurrentRound() != 1 {
		t.Errorf("expected round counter restored, got %d", ag.Memory().CurrentRound())
	}
	msgs := ag.Memory().Messages()
	if len(msgs) != 2 || msgs[0].Content != "remember this" {
		t.Errorf("expected transcript restored, got %v", msgs)
	}
}

func TestResumeWithoutSnapshots(t *testing.T) {
	svc := newTestService(t, Deps{})
	if err := svc.Resume(context.Background(), "s1", "persona"); err == nil {
		t.Error("expected resume to fail without a snapshot store")
	}
}

func TestServiceStats(t *testing.T) {
	svc := newTestService(t, Deps{})
	ctx := context.Background()

	id, err := svc.Start(ctx, "persona", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Answer(ctx, id, "hi"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	svc.Answer(ctx, "missing", "hi")

	stats := svc.Stats()
	if stats.Size != 1 {
		t.Errorf("expected 1 live session, got %d", stats.Size)
	}
	if stats.Hits == 0 || stats.Misses == 0 {
		t.Errorf("expected both hits and misses, got %d/%d", stats.Hits, stats.Misses)
	}

	active := svc.ActiveSessions()
	if len(active) != 1 || active[0] != id {
		t.Errorf("expected active list [%s], got %v", id, active)
	}
}
