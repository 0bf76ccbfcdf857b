// Package logger provides tagged console logging for the CLI.
//
// Verbosity is controlled by the LOG_LEVEL environment variable
// (debug|info|warn|error, default info).
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

// Init configures the console logger. Calling it more than once is a no-op;
// the tag helpers call it lazily.
func Init() {
	once.Do(func() {
		level := parseLevel(os.Getenv("LOG_LEVEL"))
		w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		base = zerolog.New(w).With().Timestamp().Logger().Level(level)
	})
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug-level message under a tag.
func Debug(tag, msg string) {
	Init()
	base.Debug().Str("tag", tag).Msg(msg)
}

// Info logs an informational message under a tag.
func Info(tag, msg string) {
	Init()
	base.Info().Str("tag", tag).Msg(msg)
}

// Success logs a completed-step message under a tag.
func Success(tag, msg string) {
	Init()
	base.Info().Str("tag", tag).Bool("ok", true).Msg(msg)
}

// Warn logs a warning under a tag.
func Warn(tag, msg string) {
	Init()
	base.Warn().Str("tag", tag).Msg(msg)
}

// Error logs an error message under a tag.
func Error(tag, msg string) {
	Init()
	base.Error().Str("tag", tag).Msg(msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("\x1b[1mtradewind\x1b[0m %s — trade route calculator\n", version)
}

// Section prints a visual separator before a group of stats.
func Section(title string) {
	fmt.Printf("\n\x1b[1m── %s %s\x1b[0m\n", title, strings.Repeat("─", max(0, 40-len(title))))
}

// Stats prints a single aligned name/value line under a Section.
func Stats(name string, value interface{}) {
	fmt.Printf("  %-24s %v\n", name, value)
}
