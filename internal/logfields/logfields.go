package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyAction     = "action"
	KeyFile       = "file"
	KeyTag        = "tag"
	KeyAnchor     = "anchor"
	KeyLine       = "line"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Action(name string) slog.Attr    { return slog.String(KeyAction, name) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Tag(name string) slog.Attr       { return slog.String(KeyTag, name) }
func Anchor(id string) slog.Attr      { return slog.String(KeyAnchor, id) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
