package eventstore

import (
	"context"
	"testing"
	"time"
)

func record(t *testing.T, store Store, ev Event, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	if err := Record(context.Background(), store, ev); err != nil {
		t.Fatal(err)
	}
}

func TestProjectionRebuildFromLifecycle(t *testing.T) {
	store := newMemStore(t)

	ev1, err1 := NewSiteGenerated("acme", SiteGeneratedPayload{Category: "gym", Pages: 5, Images: 9, Voices: 1})
	record(t, store, ev1, err1)
	ev2, err2 := NewSiteBootstrapped("acme", SiteBootstrappedPayload{Pages: 6, Dir: "/srv/site"})
	record(t, store, ev2, err2)
	ev3, err3 := NewAssetSaved("acme", AssetSavedPayload{AssetID: "home_hero", Kind: "image", Path: "assets/images/home_hero.png"})
	record(t, store, ev3, err3)
	ev4, err4 := NewAssetFetchFailed("acme", AssetFetchFailedPayload{AssetID: "about_img1", Kind: "image", Reason: "timeout"})
	record(t, store, ev4, err4)
	ev5, err5 := NewAssetsSubmitted("acme", AssetsSubmittedPayload{Images: 2, Failed: 1, PlaceholdersResolved: 1, State: "partially_resolved"})
	record(t, store, ev5, err5)

	p := NewSiteHistoryProjection(store, 10)
	if err := p.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	s, ok := p.Get("acme")
	if !ok {
		t.Fatal("site missing from projection")
	}
	if s.State != "partially_resolved" {
		t.Errorf("state: %s", s.State)
	}
	if s.Category != "gym" {
		t.Errorf("category: %s", s.Category)
	}
	if s.PageCount != 6 {
		t.Errorf("page count: %d", s.PageCount)
	}
	if s.AssetsSaved != 1 || s.AssetsFailed != 1 {
		t.Errorf("asset counts: saved=%d failed=%d", s.AssetsSaved, s.AssetsFailed)
	}
	if s.LastError != "timeout" {
		t.Errorf("last error: %q", s.LastError)
	}
	if s.GeneratedAt == nil {
		t.Error("generated_at should be set")
	}
}

func TestProjectionPublishClearsError(t *testing.T) {
	store := newMemStore(t)
	p := NewSiteHistoryProjection(store, 10)

	fail, err := NewPublishFailed("acme", PublishFailedPayload{Mode: "s3", Reason: "bucket denied"})
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(fail)
	if s, _ := p.Get("acme"); s.LastError != "bucket denied" {
		t.Errorf("last error after failure: %q", s.LastError)
	}

	ok, err := NewSitePublished("acme", SitePublishedPayload{Mode: "s3", Dir: "/srv/site", DurationMS: 1200})
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(ok)

	s, _ := p.Get("acme")
	if s.State != "published" {
		t.Errorf("state: %s", s.State)
	}
	if s.PublishedAt == nil {
		t.Error("published_at should be set")
	}
	if s.LastError != "" {
		t.Errorf("publish success should clear the error, got %q", s.LastError)
	}
}

func TestProjectionSummariesOrdering(t *testing.T) {
	p := NewSiteHistoryProjection(newMemStore(t), 10)

	older := &BaseEvent{EventSiteID: "old", EventType: TypeSiteGenerated, EventTimestamp: time.Now().Add(-time.Hour), EventPayload: []byte(`{}`)}
	newer := &BaseEvent{EventSiteID: "new", EventType: TypeSiteGenerated, EventTimestamp: time.Now(), EventPayload: []byte(`{}`)}
	p.Apply(older)
	p.Apply(newer)

	summaries := p.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].SiteID != "new" {
		t.Errorf("most recent site first, got %s", summaries[0].SiteID)
	}
}

func TestProjectionMaxSize(t *testing.T) {
	p := NewSiteHistoryProjection(newMemStore(t), 1)
	p.Apply(&BaseEvent{EventSiteID: "a", EventType: TypeSiteGenerated, EventTimestamp: time.Now().Add(-time.Minute), EventPayload: []byte(`{}`)})
	p.Apply(&BaseEvent{EventSiteID: "b", EventType: TypeSiteGenerated, EventTimestamp: time.Now(), EventPayload: []byte(`{}`)})
	if got := len(p.Summaries()); got != 1 {
		t.Errorf("summaries capped at 1, got %d", got)
	}
}
