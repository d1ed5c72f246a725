package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyVersion    = "version"
	KeyRoute      = "route"
	KeyPage       = "page"
	KeyBodyKind   = "body_kind"
	KeyTag        = "tag"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyBuildID    = "build_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Page(title string) slog.Attr     { return slog.String(KeyPage, title) }
func BodyKind(k string) slog.Attr     { return slog.String(KeyBodyKind, k) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
