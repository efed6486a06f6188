package eventstore

import (
	"context"
	"testing"
	"time"
)

func newMemStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndGetBySiteID(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	ev, err := NewSiteGenerated("acme", SiteGeneratedPayload{Category: "hospital", Pages: 5, Images: 9, Voices: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := Record(ctx, store, ev); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Append(ctx, "other", TypeSiteBootstrapped, []byte(`{}`), nil); err != nil {
		t.Fatal(err)
	}

	events, err := store.GetBySiteID(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event for acme, got %d", len(events))
	}
	if events[0].Type() != TypeSiteGenerated {
		t.Errorf("type: %s", events[0].Type())
	}
	if events[0].SiteID() != "acme" {
		t.Errorf("site id: %s", events[0].SiteID())
	}
}

func TestAppendPreservesMetadata(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	meta := map[string]string{"job_id": "j-1"}
	if err := store.Append(ctx, "acme", TypeAssetSaved, []byte(`{"asset_id":"home_hero"}`), meta); err != nil {
		t.Fatal(err)
	}
	events, err := store.GetBySiteID(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if events[0].Metadata()["job_id"] != "j-1" {
		t.Errorf("metadata lost: %v", events[0].Metadata())
	}
}

func TestGetRange(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "acme", TypeSiteGenerated, []byte(`{}`), nil); err != nil {
		t.Fatal(err)
	}

	events, err := store.GetRange(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("expected the event inside the window, got %d", len(events))
	}

	events, err = store.GetRange(ctx, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events outside the window, got %d", len(events))
	}
}

func TestPrune(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "acme", TypeSiteGenerated, []byte(`{}`), nil); err != nil {
		t.Fatal(err)
	}

	// cutoff in the past removes nothing
	removed, err := store.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("expected 0 pruned, got %d", removed)
	}

	// cutoff in the future removes the event
	removed, err = store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned, got %d", removed)
	}

	events, err := store.GetBySiteID(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("pruned events still present: %d", len(events))
	}
}

func TestRecordNilStore(t *testing.T) {
	ev, err := NewSitePublished("acme", SitePublishedPayload{Mode: "s3", Dir: "/tmp/site"})
	if err != nil {
		t.Fatal(err)
	}
	if err := Record(context.Background(), nil, ev); err != nil {
		t.Errorf("recording to a nil store must be a no-op: %v", err)
	}
}
