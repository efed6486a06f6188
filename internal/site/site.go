// Package site defines the domain model shared by generation, storage,
// injection, and publishing: sites, sections, pages, asset requests, and the
// placeholder contract that joins them.
package site

// MaxSections caps how many requested sections become pages. The first four
// non-blank entries win; everything after is ignored.
const MaxSections = 4

// DefaultSections is the canonical fallback set used when a generation
// request carries no usable section names.
var DefaultSections = []string{"About", "Services", "Team", "Contact"}

// Section identifies one content block of a site.
type Section struct {
	// Name is the human-readable title (e.g. "Doctors").
	Name string `json:"name"`
	// Slug is the URL-safe identifier derived from Name. It is the join key
	// between pages, placeholders, and asset ids.
	Slug string `json:"slug"`
	// Content is generated or fallback prose, already rendered to HTML.
	Content string `json:"content,omitempty"`
}

// Site is the aggregate being generated. It is constructed once per
// generation request and immutable after assembly completes.
type Site struct {
	// Identity is the display name of the business.
	Identity string `json:"identity"`
	// Category is a free-text domain label (drives theme and narration voice).
	Category string `json:"category"`
	// Sections is the ordered section list, capped at MaxSections.
	Sections []Section `json:"sections"`
	// Theme is derived from Category; always set.
	Theme Theme `json:"theme"`
}

// Page is one HTML document of a generated site.
type Page struct {
	Filename string `json:"filename"`
	Body     string `json:"html_file"`
}

// ImageRequest asks the external asset producer for one image.
type ImageRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// VoiceRequest asks the external asset producer for one narration recording.
type VoiceRequest struct {
	ID     string `json:"id"`
	Script string `json:"script"`
}

// GenerationPackage is the immutable output of package assembly.
type GenerationPackage struct {
	Pages              []Page         `json:"pages"`
	ImagesNeeded       []ImageRequest `json:"images_needed"`
	VoiceScriptsNeeded []VoiceRequest `json:"voice_scripts_needed"`
	CallbackURL        string         `json:"callback_url_for_assets"`
}

// AssetItem is one delivered asset: either a remote URL or an inline payload.
// Deliveries may be partial and may contain unrequested ids.
type AssetItem struct {
	ID      string `json:"id"`
	FileURL string `json:"file_url,omitempty"`
	Data    []byte `json:"-"`
}

// Delivery is an asynchronous asset submission.
type Delivery struct {
	Images []AssetItem `json:"images"`
	Voices []AssetItem `json:"voices"`
}

// State describes how far a site has progressed through asset resolution.
type State string

const (
	StateSkeleton          State = "skeleton"
	StatePartiallyResolved State = "partially_resolved"
	StateFullyResolved     State = "fully_resolved"
	StatePublished         State = "published"
)
