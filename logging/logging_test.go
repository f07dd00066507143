package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-vppcfg/logging"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec       string
		base       slog.Level
		components map[string]slog.Level
		wantErr    bool
	}{
		{spec: "", base: slog.LevelInfo},
		{spec: "debug", base: slog.LevelDebug},
		{spec: "warn,reconciler=debug", base: slog.LevelWarn,
			components: map[string]slog.Level{"reconciler": slog.LevelDebug}},
		{spec: "info,vpp=debug,journal=warn", base: slog.LevelInfo,
			components: map[string]slog.Level{"vpp": slog.LevelDebug, "journal": slog.LevelWarn}},
		{spec: "bogus", wantErr: true},
		{spec: "info,reconciler=bogus", wantErr: true},
		{spec: "reconciler=debug,info", wantErr: true},
		{spec: "=debug", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := logging.ParseSpec(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, spec.BaseLevel)
			for component, level := range tt.components {
				assert.Equal(t, level, spec.LevelFor(component))
			}
		})
	}
}

func TestSpec_LevelForFallsBackToBase(t *testing.T) {
	spec, err := logging.ParseSpec("warn,reconciler=debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, spec.LevelFor("reconciler"))
	assert.Equal(t, slog.LevelWarn, spec.LevelFor("anything-else"))
}

func TestNew_ComponentFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		CLISpec: "warn,reconciler=debug",
		Output:  &buf,
	})
	require.NoError(t, err)

	// Base level warn: plain debug is dropped.
	logger.Debug("dropped")
	// The reconciler component is overridden down to debug.
	logger.With("component", "reconciler").Debug("kept")
	// Another component stays at the warn base.
	logger.With("component", "vpp").Info("dropped too")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestNew_SpecPrecedence(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		CLISpec:    "error",
		ConfigSpec: "debug",
		Output:     &buf,
	})
	require.NoError(t, err)

	logger.Info("suppressed by the CLI spec")
	assert.Empty(t, buf.String())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		CLISpec: "info",
		Format:  logging.FormatJSON,
		Output:  &buf,
	})
	require.NoError(t, err)

	logger.Info("hello")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "json handler emits objects: %s", line)
}

func TestNew_InvalidSpecIsAnError(t *testing.T) {
	_, err := logging.New(logging.Options{CLISpec: "nope"})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]logging.Format{
		"":     logging.FormatText,
		"text": logging.FormatText,
		"json": logging.FormatJSON,
		"JSON": logging.FormatJSON,
	} {
		got, err := logging.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := logging.ParseFormat("xml")
	assert.Error(t, err)
}
