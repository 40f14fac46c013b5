package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output.
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return New(io.Discard)
}

// WithBuildID tags every record of the returned logger with a short random
// build id, so interleaved runs stay distinguishable in shared logs.
func (l *Logger) WithBuildID() *Logger {
	id := uuid.NewString()[:8]
	return &Logger{Logger: l.With("build", id)}
}

// BuildStarted logs the start of a site build.
func (l *Logger) BuildStarted(sourceDir, outputDir string) {
	l.Info("build started",
		"source", sourceDir,
		"output", outputDir)
}

// BuildCompleted logs the end of a site build.
func (l *Logger) BuildCompleted(rendered, copied, skipped, errors int, duration time.Duration) {
	l.Info("build completed",
		"rendered", rendered,
		"copied", copied,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// FileRendered logs a successfully rendered document.
func (l *Logger) FileRendered(source, dest string) {
	l.Info("file rendered",
		"source", source,
		"dest", dest)
}

// FileCopied logs a file copied as-is.
func (l *Logger) FileCopied(source, dest string) {
	l.Warn("file not recognized, copying as-is",
		"source", source,
		"dest", dest)
}

// FileSkipped logs an up-to-date file left alone.
func (l *Logger) FileSkipped(source, reason string) {
	l.Debug("file skipped",
		"source", source,
		"reason", reason)
}

// DocumentError logs a per-document failure.
func (l *Logger) DocumentError(source string, err error) {
	l.Error("document failed",
		"source", source,
		"error", err)
}

// SitemapGenerated logs a written sitemap.
func (l *Logger) SitemapGenerated(path string, urls int) {
	l.Info("sitemap generated",
		"path", path,
		"urls", urls)
}

// FeedGenerated logs a written RSS feed.
func (l *Logger) FeedGenerated(path string, items int) {
	l.Info("feed generated",
		"path", path,
		"items", items)
}
