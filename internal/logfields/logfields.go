package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyKind       = "kind"
	KeyEntity     = "entity"
	KeySlug       = "slug"
	KeyLocale     = "locale"
	KeyPath       = "path"
	KeyHash       = "content_hash"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Entity(slug string) slog.Attr     { return slog.String(KeyEntity, slug) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Locale(l string) slog.Attr        { return slog.String(KeyLocale, l) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Hash(h string) slog.Attr          { return slog.String(KeyHash, h) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
