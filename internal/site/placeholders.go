package site

import "path"

// Asset ids are the persisted "schema" joining placeholders to delivered
// files. The home hero and the narration use fixed ids; section images derive
// from the section slug.
const (
	HeroAssetID      = "home_hero"
	NarrationAssetID = "site_intro"
)

// SectionImageIDs returns the two asset ids every section page embeds.
func SectionImageIDs(slug string) (primary, supporting string) {
	return slug + "_img1", slug + "_img2"
}

// ImagePlaceholder returns the token emitted verbatim into page markup for an
// image slot. The token disappears on substitution, which is what makes the
// rewrite pass idempotent.
func ImagePlaceholder(id string) string {
	return "<!-- IMAGE_PLACEHOLDER:" + id + " -->"
}

// VoicePlaceholder returns the token for the narration slot.
func VoicePlaceholder(id string) string {
	return "<!-- VOICE_PLACEHOLDER:" + id + " -->"
}

// ImageAssetPath returns the site-relative path a delivered image is saved to.
func ImageAssetPath(id string) string {
	return path.Join("assets", "images", id+".png")
}

// AudioAssetPath returns the site-relative path a delivered narration is
// saved to. One convention everywhere: assets/audio/{id}.mp3.
func AudioAssetPath(id string) string {
	return path.Join("assets", "audio", id+".mp3")
}

// StylesheetPath is where the shared stylesheet lives inside a site directory.
const StylesheetPath = "assets/styles.css"
