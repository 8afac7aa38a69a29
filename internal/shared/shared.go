// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] writing to the given path, creating
// parent directories as needed. Used by the TUI so log lines don't corrupt
// the rendered screen.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// maxFilenameLen bounds suggested filenames so they stay safe on every
// common filesystem.
const maxFilenameLen = 120

// SanitizeFilename strips path separators and characters that are unsafe
// on common filesystems, collapses whitespace, and truncates the result
// to a bounded length (extension preserved).
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	name = replacer.Replace(name)

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	name = strings.Join(strings.Fields(b.String()), " ")

	if len(name) <= maxFilenameLen {
		return name
	}

	ext := ""
	if idx := strings.LastIndex(name, "."); idx > 0 && len(name)-idx <= 8 {
		ext = name[idx:]
		name = name[:idx]
	}
	cut := maxFilenameLen - len(ext)
	for cut > 0 && !isRuneBoundary(name, cut) {
		cut--
	}
	return strings.TrimSpace(name[:cut]) + ext
}

func isRuneBoundary(s string, i int) bool {
	if i <= 0 || i >= len(s) {
		return true
	}
	return s[i]&0xC0 != 0x80
}

// CleanTrackTitle removes parenthesized and bracketed suffixes from a
// track title ("Song (Remastered 2011)" becomes "Song"), which improves
// search hit rates across backends.
func CleanTrackTitle(title string) string {
	if i := strings.Index(title, "("); i != -1 {
		title = title[:i]
	}
	if i := strings.Index(title, "["); i != -1 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}
