package redis

import (
	"testing"
	"time"

	"exam-simulator/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	session, err := app.NewSession("session-1", sampleTest(), app.SessionConfig{Owner: "alice"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	store.Put(session)
	if !mr.Exists("exam:session:session-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got := mr.HGet("exam:session:session-1", "owner"); got != "alice" {
		t.Fatalf("expected owner alice, got %q", got)
	}
	if got, ok := store.Get("session-1"); !ok || got != session {
		t.Fatalf("expected stored session back")
	}
	if n := len(store.List()); n != 1 {
		t.Fatalf("expected 1 session, got %d", n)
	}

	store.Delete("session-1")
	if mr.Exists("exam:session:session-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected session to be gone")
	}
}
