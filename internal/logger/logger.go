// Package logger provides a zerolog wrapper with opinionated defaults for a
// short-lived CLI process
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Options configures the logger
type Options struct {
	Level      string    `env:"LEVEL" envDefault:"warn"`
	Format     string    `env:"FORMAT" envDefault:"auto"`
	WithCaller bool      `env:"CALLER" envDefault:"false"`
	Writer     io.Writer `env:"-"`
}

// EnvPrefix namespaces the logger environment variables
const EnvPrefix = "DISPLAYMODE_LOG_"

// FromEnv builds Options from DISPLAYMODE_LOG_* variables
func FromEnv() (Options, error) {
	var opt Options
	if err := env.ParseWithOptions(&opt, env.Options{Prefix: EnvPrefix}); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	opt.Level = strings.ToLower(opt.Level)
	opt.Format = strings.ToLower(opt.Format)
	return opt, nil
}

// Logger is the project-wide logging type
type Logger = zerolog.Logger

var root atomic.Pointer[zerolog.Logger]

// Get returns the process-wide root logger, a disabled one until Init runs
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// Init builds the root logger from opt and installs it. Later calls replace it.
func Init(opt Options) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}

	switch opt.Format {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
	default:
		if isTerminal(w) {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		}
	}

	log := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
	if opt.WithCaller {
		log = log.With().Caller().Logger()
	}

	root.Store(&log)
	return &log
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

// ParseLevel supports string-only levels; unknown values fall back to warn
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
