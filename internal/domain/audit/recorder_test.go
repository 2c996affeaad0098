package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
	"github.com/cosmosolder/sparkbridge/internal/infra/sqlite"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRecorder(db)
}

func TestNewEntry_SuccessAndFailure(t *testing.T) {
	t.Parallel()

	ok := NewEntry(ModeRunOnce, "https://api.example/execute",
		dispatch.Success([]byte(`{"ok":true}`)), 120*time.Millisecond)
	if ok.Outcome != "success" || ok.Error != "" {
		t.Errorf("success entry = %+v", ok)
	}
	if ok.ID == "" {
		t.Error("entry ID not assigned")
	}

	failed := NewEntry(ModeTool, "https://api.example/execute",
		dispatch.Failure("status 500: boom"), time.Second)
	if failed.Outcome != "failure" || failed.Error != "status 500: boom" {
		t.Errorf("failure entry = %+v", failed)
	}
}

func TestRecordAndListRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := newTestRecorder(t)

	first := NewEntry(ModeRunOnce, "https://api.example/a",
		dispatch.Success([]byte(`{}`)), 10*time.Millisecond)
	first.CreatedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	second := NewEntry(ModeGateway, "https://api.example/b",
		dispatch.Failure("request failed: connection refused"), 20*time.Millisecond)
	second.CreatedAt = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	for _, e := range []Entry{first, second} {
		if err := rec.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := rec.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListRecent() = %d entries; want 2", len(entries))
	}
	if entries[0].Endpoint != "https://api.example/b" {
		t.Errorf("newest first: got %s", entries[0].Endpoint)
	}
	if entries[0].Mode != ModeGateway || entries[0].Outcome != "failure" {
		t.Errorf("entry round-trip = %+v", entries[0])
	}
	if entries[0].Duration != 20*time.Millisecond {
		t.Errorf("duration = %v", entries[0].Duration)
	}
}

func TestListRecent_HonorsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := newTestRecorder(t)
	for i := 0; i < 5; i++ {
		e := NewEntry(ModeRunOnce, "https://api.example", dispatch.Success([]byte(`{}`)), 0)
		if err := rec.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := rec.ListRecent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("ListRecent(3) = %d entries", len(entries))
	}
}

func TestStart_ConsumesBusEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newTestRecorder(t)
	bus := eventbus.New()
	rec.Start(ctx, bus)

	entry := NewEntry(ModeTool, "https://api.example/execute",
		dispatch.Success([]byte(`{"n":1}`)), 5*time.Millisecond)
	bus.Publish(TopicInvocationCompleted, entry)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := rec.ListRecent(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 1 {
			if entries[0].ID != entry.ID {
				t.Errorf("recorded ID = %s; want %s", entries[0].ID, entry.ID)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("event was not persisted")
}
