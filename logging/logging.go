// Package logging provides structured logging for vppcfg: slog with
// per-component level filtering, so "info,reconciler=debug" turns up
// only the reconciler while the rest stays quiet.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar is the environment variable holding a log spec.
const EnvVar = "VPPCFG_LOG"

// Format is the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %q", s)
	}
}

// ParseLevel parses a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// Spec is a logging specification: a base level plus per-component
// overrides.
//
// Format: "<base-level>[,<component>=<level>]..."
//
// Examples: "info", "warn,reconciler=debug", "info,vpp=debug,journal=warn".
type Spec struct {
	BaseLevel  slog.Level
	Components map[string]slog.Level
}

// ParseSpec parses a spec string. Empty means info with no overrides.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{
		BaseLevel:  slog.LevelInfo,
		Components: make(map[string]slog.Level),
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return spec, nil
	}

	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		component, levelStr, isOverride := strings.Cut(part, "=")
		if isOverride {
			component = strings.TrimSpace(component)
			if component == "" {
				return spec, fmt.Errorf("empty component name in %q", part)
			}
			level, err := ParseLevel(levelStr)
			if err != nil {
				return spec, fmt.Errorf("invalid level for component %q: %w", component, err)
			}
			spec.Components[component] = level
			continue
		}
		if i != 0 {
			return spec, fmt.Errorf("base level %q must be first in spec", part)
		}
		level, err := ParseLevel(part)
		if err != nil {
			return spec, err
		}
		spec.BaseLevel = level
	}

	return spec, nil
}

// LevelFor returns the effective level for a component.
func (s *Spec) LevelFor(component string) slog.Level {
	if level, ok := s.Components[component]; ok {
		return level
	}
	return s.BaseLevel
}

// Options configures New. Spec precedence: CLI flag > environment >
// config file > "info".
type Options struct {
	CLISpec    string
	EnvSpec    string
	ConfigSpec string
	Format     Format
	Output     io.Writer
}

// New builds a logger with component-level filtering.
func New(opts Options) (*slog.Logger, error) {
	specStr := ""
	switch {
	case opts.CLISpec != "":
		specStr = opts.CLISpec
	case opts.EnvSpec != "":
		specStr = opts.EnvSpec
	case opts.ConfigSpec != "":
		specStr = opts.ConfigSpec
	}

	spec, err := ParseSpec(specStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log spec: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	// The inner handler passes everything; the filtering wrapper is
	// the only gate, so per-component debug works under a warn base.
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var inner slog.Handler
	switch opts.Format {
	case FormatJSON:
		inner = slog.NewJSONHandler(output, handlerOpts)
	default:
		inner = slog.NewTextHandler(output, handlerOpts)
	}

	return slog.New(newFilterHandler(inner, &spec)), nil
}

// FromEnv builds a logger from the VPPCFG_LOG environment variable.
func FromEnv() (*slog.Logger, error) {
	return New(Options{EnvSpec: os.Getenv(EnvVar)})
}
