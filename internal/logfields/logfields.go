package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySiteID     = "site_id"
	KeySite       = "site"
	KeyCategory   = "category"
	KeySection    = "section"
	KeySlug       = "slug"
	KeyPage       = "page"
	KeyAssetID    = "asset_id"
	KeyAssetKind  = "asset_kind"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyCount      = "count"
	KeyState      = "state"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyJobID      = "job_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func SiteID(id string) slog.Attr      { return slog.String(KeySiteID, id) }
func Site(name string) slog.Attr      { return slog.String(KeySite, name) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Page(filename string) slog.Attr  { return slog.String(KeyPage, filename) }
func AssetID(id string) slog.Attr     { return slog.String(KeyAssetID, id) }
func AssetKind(k string) slog.Attr    { return slog.String(KeyAssetKind, k) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
