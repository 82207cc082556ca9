package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel converts a config log level to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds a console logger writing to out.
func New(level string, out io.Writer) zerolog.Logger {
	return NewWithFile(level, out, nil)
}

// NewWithFile builds a logger writing coloured console output to out and,
// when file is non-nil, uncoloured console output to file as well.
func NewWithFile(level string, out, file io.Writer) zerolog.Logger {
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339},
	}
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
}

// LogFilePath builds a per-session log file path.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}
