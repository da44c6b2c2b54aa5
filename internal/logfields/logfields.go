package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo        = "repository"
	KeyURL         = "url"
	KeyPath        = "path"
	KeyFile        = "file"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyPattern     = "pattern"
	KeyBranch      = "branch"
	KeyCommit      = "commit"
	KeyRunID       = "run_id"
	KeyCount       = "count"
	KeyCheck       = "check"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr  { return slog.String(KeyRepo, r) }
func URL(u string) slog.Attr         { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func File(f string) slog.Attr        { return slog.String(KeyFile, f) }
func Source(s string) slog.Attr      { return slog.String(KeySource, s) }
func Destination(d string) slog.Attr { return slog.String(KeyDestination, d) }
func Pattern(p string) slog.Attr     { return slog.String(KeyPattern, p) }
func Branch(b string) slog.Attr      { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr      { return slog.String(KeyCommit, c) }
func RunID(id string) slog.Attr      { return slog.String(KeyRunID, id) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func Check(name string) slog.Attr    { return slog.String(KeyCheck, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
