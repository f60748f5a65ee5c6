package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPlugin     = "plugin"
	KeyTagID      = "tag_id"
	KeyOutput     = "output"
	KeyPath       = "path"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyRegion     = "region"
	KeyMethod     = "method"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func TagID(id string) slog.Attr       { return slog.String(KeyTagID, id) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Region(r string) slog.Attr       { return slog.String(KeyRegion, r) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
