// Package eventstore provides event sourcing primitives for site pipeline
// tracking.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// SiteSummary is a read model summarizing one site's pipeline history.
type SiteSummary struct {
	SiteID       string     `json:"site_id"`
	State        string     `json:"state"`
	Category     string     `json:"category,omitempty"`
	PageCount    int        `json:"page_count"`
	AssetsSaved  int        `json:"assets_saved"`
	AssetsFailed int        `json:"assets_failed"`
	GeneratedAt  *time.Time `json:"generated_at,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
	LastError    string     `json:"last_error,omitempty"`
}

// SiteHistoryProjection maintains an in-memory view of per-site pipeline
// progress, reconstructed from events in the store.
type SiteHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	sites   map[string]*SiteSummary
	maxSize int
}

// NewSiteHistoryProjection creates a projection backed by the given store.
func NewSiteHistoryProjection(store Store, maxSize int) *SiteHistoryProjection {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &SiteHistoryProjection{
		store:   store,
		sites:   make(map[string]*SiteSummary),
		maxSize: maxSize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
// Typically called at startup.
func (p *SiteHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sites = make(map[string]*SiteSummary)
	for _, event := range events {
		p.applyLocked(event)
	}
	return nil
}

// Apply folds a live event into the projection.
func (p *SiteHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(event)
}

// Get returns the summary for one site, or false if none is known.
func (p *SiteHistoryProjection) Get(siteID string) (SiteSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.sites[siteID]
	if !ok {
		return SiteSummary{}, false
	}
	return *s, true
}

// Summaries returns all known sites ordered by most recent activity.
func (p *SiteHistoryProjection) Summaries() []SiteSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]SiteSummary, 0, len(p.sites))
	for _, s := range p.sites {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	if len(out) > p.maxSize {
		out = out[:p.maxSize]
	}
	return out
}

func (p *SiteHistoryProjection) applyLocked(event Event) {
	s, ok := p.sites[event.SiteID()]
	if !ok {
		s = &SiteSummary{SiteID: event.SiteID(), State: "new"}
		p.sites[event.SiteID()] = s
	}
	ts := event.Timestamp()
	if ts.After(s.LastActivity) {
		s.LastActivity = ts
	}

	switch event.Type() {
	case TypeSiteGenerated:
		var payload SiteGeneratedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			s.Category = payload.Category
			s.PageCount = payload.Pages
		}
		s.State = "generated"
		s.GeneratedAt = &ts

	case TypeSiteBootstrapped:
		var payload SiteBootstrappedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil && payload.Pages > 0 {
			s.PageCount = payload.Pages
		}
		s.State = "bootstrapped"

	case TypeAssetsSubmitted:
		var payload AssetsSubmittedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil && payload.State != "" {
			s.State = payload.State
		}

	case TypeAssetSaved:
		s.AssetsSaved++

	case TypeAssetFetchFailed:
		s.AssetsFailed++
		var payload AssetFetchFailedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			s.LastError = payload.Reason
		}

	case TypeSitePublished:
		s.State = "published"
		s.PublishedAt = &ts
		s.LastError = ""

	case TypePublishFailed:
		var payload PublishFailedPayload
		if json.Unmarshal(event.Payload(), &payload) == nil {
			s.LastError = payload.Reason
		}
	}
}
