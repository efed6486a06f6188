// Package responses defines the JSON response bodies of the public API.
// Field names are part of the wire contract with external agents; change
// them only with a versioned endpoint.
package responses

import (
	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Bootstrap confirms a written skeleton and echoes what the caller still
// owes: the asset requests and where to deliver them.
type Bootstrap struct {
	Status             string              `json:"status"`
	Site               string              `json:"site,omitempty"`
	Pages              int                 `json:"pages"`
	ImagesNeeded       []site.ImageRequest `json:"images_needed"`
	VoiceScriptsNeeded []site.VoiceRequest `json:"voice_scripts_needed"`
	CallbackURL        string              `json:"callback_url_for_assets,omitempty"`
}

// SubmitAssets reports one processed delivery.
type SubmitAssets struct {
	Status               string               `json:"status"`
	Site                 string               `json:"site,omitempty"`
	SavedImages          []string             `json:"saved_images"`
	SavedVoices          []string             `json:"saved_voices"`
	Failed               []assets.FailedAsset `json:"failed,omitempty"`
	PlaceholdersResolved int                  `json:"placeholders_resolved"`
	PlaceholdersLeft     int                  `json:"placeholders_left"`
	State                site.State           `json:"state"`
	Deployed             bool                 `json:"deployed,omitempty"`
}

// Deploy reports a completed publish.
type Deploy struct {
	Status string `json:"status"`
	Dir    string `json:"dir"`
}

// Health is the liveness payload served on both the API and admin ports.
type Health struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
