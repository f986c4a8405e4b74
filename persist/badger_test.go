package persist

import (
	"testing"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStoreInMemory()
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store := newTestBadger(t)

	want := sampleSnapshot()
	if err := store.Save("s1", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load("s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	assertSnapshotEqual(t, got, want)
}

func TestBadgerStoreLoadAbsentSession(t *testing.T) {
	store := newTestBadger(t)

	got, err := store.Load("missing")
	if err != nil {
		t.Fatalf("expected nil error for absent session, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot, got %+v", got)
	}
}

func TestBadgerStoreOverwrite(t *testing.T) {
	store := newTestBadger(t)

	first := sampleSnapshot()
	if err := store.Save("s1", first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := sampleSnapshot()
	second.RoundCounter = 9
	if err := store.Save("s1", second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load("s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RoundCounter != 9 {
		t.Errorf("expected latest snapshot, got round counter %d", got.RoundCounter)
	}
}

func TestBadgerStoreClear(t *testing.T) {
	store := newTestBadger(t)

	if err := store.Save("s1", sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear("s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := store.Load("s1")
	if err != nil || got != nil {
		t.Errorf("expected absent after clear, got %+v, %v", got, err)
	}
}

func TestBadgerStoreIsolatesSessions(t *testing.T) {
	store := newTestBadger(t)

	a := sampleSnapshot()
	b := sampleSnapshot()
	b.RoundCounter = 7

	if err := store.Save("a", a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := store.Save("b", b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	gotA, err := store.Load("a")
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	gotB, err := store.Load("b")
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if gotA.RoundCounter == gotB.RoundCounter {
		t.Error("sessions must not share state")
	}
}
