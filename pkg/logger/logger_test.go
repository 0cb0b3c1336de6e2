package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"warning alias", "WARNING", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"disabled", "off", zerolog.Disabled},
		{"unknown defaults to info", "verbose", zerolog.InfoLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	New(Config{Level: "error"})
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	New(Config{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNew_WritesToConfiguredOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf, App: "stockfolio"})
	log.Info().Str("ticker", "AAPL").Msg("fetched prices")

	output := buf.String()
	assert.Contains(t, output, "fetched prices")
	assert.Contains(t, output, `"ticker":"AAPL"`)
	assert.Contains(t, output, `"app":"stockfolio"`)
}

func TestNew_TimestampFormat(t *testing.T) {
	New(Config{Level: "info", Output: &bytes.Buffer{}})
	assert.Equal(t, "2006-01-02T15:04:05Z07:00", zerolog.TimeFieldFormat)
}

func TestNew_PrettyOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	log := New(Config{Level: "info", Pretty: true, Output: &buf})
	log.Info().Str("key", "value").Msg("pretty message")

	output := buf.String()
	assert.Contains(t, output, "pretty message")
	// Console writer renders key=value rather than JSON
	assert.False(t, strings.HasPrefix(strings.TrimSpace(output), "{"))
}

func TestNew_ErrorLevelFiltersLower(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	log := New(Config{Level: "error", Output: &buf})

	log.Info().Msg("should not appear")
	assert.NotContains(t, buf.String(), "should not appear")

	log.Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSetGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	SetGlobalLogger(log)
	defer SetGlobalLogger(zerolog.Nop())

	log.Info().Msg("global logger test")
	assert.Contains(t, buf.String(), "global logger test")
}
