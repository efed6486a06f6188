package eventstore

import (
	"encoding/json"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Event type names. Stored in the event log and matched by the projection;
// renaming one is a data migration.
const (
	TypeSiteGenerated    = "SiteGenerated"
	TypeSiteBootstrapped = "SiteBootstrapped"
	TypeAssetsSubmitted  = "AssetsSubmitted"
	TypeAssetSaved       = "AssetSaved"
	TypeAssetFetchFailed = "AssetFetchFailed"
	TypeSitePublished    = "SitePublished"
	TypePublishFailed    = "PublishFailed"
)

func newBase(siteID, eventType string, payload any) (BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return BaseEvent{}, sberrors.EventLogError("marshal payload", err).
			WithContext("event_type", eventType).
			WithContext("site_id", siteID)
	}
	return BaseEvent{
		EventSiteID:    siteID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// SiteGeneratedPayload describes a completed package assembly.
type SiteGeneratedPayload struct {
	Category string `json:"category"`
	Pages    int    `json:"pages"`
	Images   int    `json:"images"`
	Voices   int    `json:"voices"`
}

// SiteGenerated is emitted when a generation package has been assembled.
type SiteGenerated struct {
	BaseEvent
	SiteGeneratedPayload
}

func NewSiteGenerated(siteID string, p SiteGeneratedPayload) (*SiteGenerated, error) {
	base, err := newBase(siteID, TypeSiteGenerated, p)
	if err != nil {
		return nil, err
	}
	return &SiteGenerated{BaseEvent: base, SiteGeneratedPayload: p}, nil
}

// SiteBootstrappedPayload describes pages written to disk.
type SiteBootstrappedPayload struct {
	Pages int    `json:"pages"`
	Dir   string `json:"dir"`
}

// SiteBootstrapped is emitted when a skeleton has been written to disk.
type SiteBootstrapped struct {
	BaseEvent
	SiteBootstrappedPayload
}

func NewSiteBootstrapped(siteID string, p SiteBootstrappedPayload) (*SiteBootstrapped, error) {
	base, err := newBase(siteID, TypeSiteBootstrapped, p)
	if err != nil {
		return nil, err
	}
	return &SiteBootstrapped{BaseEvent: base, SiteBootstrappedPayload: p}, nil
}

// AssetsSubmittedPayload summarizes one delivery.
type AssetsSubmittedPayload struct {
	Images               int    `json:"images"`
	Voices               int    `json:"voices"`
	Failed               int    `json:"failed"`
	PlaceholdersResolved int    `json:"placeholders_resolved"`
	State                string `json:"state"`
}

// AssetsSubmitted is emitted once per processed asset delivery.
type AssetsSubmitted struct {
	BaseEvent
	AssetsSubmittedPayload
}

func NewAssetsSubmitted(siteID string, p AssetsSubmittedPayload) (*AssetsSubmitted, error) {
	base, err := newBase(siteID, TypeAssetsSubmitted, p)
	if err != nil {
		return nil, err
	}
	return &AssetsSubmitted{BaseEvent: base, AssetsSubmittedPayload: p}, nil
}

// AssetSavedPayload describes one stored asset file.
type AssetSavedPayload struct {
	AssetID string `json:"asset_id"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
}

// AssetSaved is emitted for each asset written into the site.
type AssetSaved struct {
	BaseEvent
	AssetSavedPayload
}

func NewAssetSaved(siteID string, p AssetSavedPayload) (*AssetSaved, error) {
	base, err := newBase(siteID, TypeAssetSaved, p)
	if err != nil {
		return nil, err
	}
	return &AssetSaved{BaseEvent: base, AssetSavedPayload: p}, nil
}

// AssetFetchFailedPayload describes one asset that could not be obtained.
type AssetFetchFailedPayload struct {
	AssetID string `json:"asset_id"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
}

// AssetFetchFailed is emitted for each asset that could not be saved.
type AssetFetchFailed struct {
	BaseEvent
	AssetFetchFailedPayload
}

func NewAssetFetchFailed(siteID string, p AssetFetchFailedPayload) (*AssetFetchFailed, error) {
	base, err := newBase(siteID, TypeAssetFetchFailed, p)
	if err != nil {
		return nil, err
	}
	return &AssetFetchFailed{BaseEvent: base, AssetFetchFailedPayload: p}, nil
}

// SitePublishedPayload describes a successful deploy.
type SitePublishedPayload struct {
	Mode       string `json:"mode"`
	Dir        string `json:"dir"`
	DurationMS int64  `json:"duration_ms"`
}

// SitePublished is emitted after a successful deploy.
type SitePublished struct {
	BaseEvent
	SitePublishedPayload
}

func NewSitePublished(siteID string, p SitePublishedPayload) (*SitePublished, error) {
	base, err := newBase(siteID, TypeSitePublished, p)
	if err != nil {
		return nil, err
	}
	return &SitePublished{BaseEvent: base, SitePublishedPayload: p}, nil
}

// PublishFailedPayload describes a failed deploy attempt.
type PublishFailedPayload struct {
	Mode   string `json:"mode"`
	Reason string `json:"reason"`
}

// PublishFailed is emitted after a failed deploy attempt.
type PublishFailed struct {
	BaseEvent
	PublishFailedPayload
}

func NewPublishFailed(siteID string, p PublishFailedPayload) (*PublishFailed, error) {
	base, err := newBase(siteID, TypePublishFailed, p)
	if err != nil {
		return nil, err
	}
	return &PublishFailed{BaseEvent: base, PublishFailedPayload: p}, nil
}
