package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/radassist/internal/models"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Ready() error { return nil }

func (nopAnalyzer) Analyze(ctx context.Context, encodedImage, mimeType, notes string) (*models.AnalysisResult, error) {
	return &models.AnalysisResult{}, nil
}

func TestCreateGetDelete(t *testing.T) {
	store := New(nopAnalyzer{})

	c := store.Create()
	if _, err := uuid.Parse(c.ID()); err != nil {
		t.Errorf("Expected UUID session id, got %s: %v", c.ID(), err)
	}

	got, ok := store.Get(c.ID())
	if !ok || got != c {
		t.Fatalf("Expected to find session %s", c.ID())
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Len())
	}

	store.Delete(c.ID())
	if _, ok := store.Get(c.ID()); ok {
		t.Error("Expected session to be deleted")
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	store := New(nopAnalyzer{})
	a := store.Create()
	b := store.Create()
	if a.ID() == b.ID() {
		t.Errorf("Expected distinct ids, got %s twice", a.ID())
	}
}

func TestSweep(t *testing.T) {
	store := New(nopAnalyzer{})
	store.Create()
	store.Create()

	if removed := store.Sweep(time.Hour); removed != 0 {
		t.Errorf("Expected no sessions swept, got %d", removed)
	}

	time.Sleep(5 * time.Millisecond)
	if removed := store.Sweep(time.Millisecond); removed != 2 {
		t.Errorf("Expected 2 sessions swept, got %d", removed)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestCreateEvictsLeastRecentlyActive(t *testing.T) {
	store := New(nopAnalyzer{}).WithMaxSessions(2)

	a := store.Create()
	time.Sleep(2 * time.Millisecond)
	b := store.Create()
	time.Sleep(2 * time.Millisecond)
	a.SetNotes("still here")
	time.Sleep(2 * time.Millisecond)

	c := store.Create()
	if store.Len() != 2 {
		t.Fatalf("Expected store capped at 2, got %d", store.Len())
	}
	if _, ok := store.Get(b.ID()); ok {
		t.Error("Expected least recently active session to be evicted")
	}
	for _, kept := range []string{a.ID(), c.ID()} {
		if _, ok := store.Get(kept); !ok {
			t.Errorf("Expected session %s to be kept", kept)
		}
	}
}

func TestCreateUnlimited(t *testing.T) {
	store := New(nopAnalyzer{})
	for i := 0; i < 50; i++ {
		store.Create()
	}
	if store.Len() != 50 {
		t.Errorf("Expected 50 sessions, got %d", store.Len())
	}
}
