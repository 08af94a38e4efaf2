package logging

import (
	"io"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
)

// New returns a key/value logger writing to w that drops entries below level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) log.Logger {
	logger := log.With(log.NewStdLogger(w),
		"ts", log.Timestamp("2006-01-02T15:04:05.000Z07:00"),
		"caller", log.DefaultCaller,
	)
	return log.NewFilter(logger, log.FilterLevel(ParseLevel(level)))
}

// ParseLevel maps a level name to a kratos level.
func ParseLevel(raw string) log.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "fatal":
		return log.LevelFatal
	default:
		return log.LevelInfo
	}
}
