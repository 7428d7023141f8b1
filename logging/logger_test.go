package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dialogmesh/core"
)

func TestNewWithoutOutputDefaultsToStdout(t *testing.T) {
	// A config built from file values has no writer set; logging through it
	// must not panic.
	logger := New(&Config{Level: LogLevelInfo, Format: "json"})
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("turn committed", "session_id", "sess-1")
	})

	assert.NotPanics(t, func() {
		New(&Config{Format: "text"}).Warn("no writer configured")
	})
}

func TestNewWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelDebug, Format: "text", Output: &buf})

	logger.Debug("scoring", "handler", "booking")
	assert.Contains(t, buf.String(), "scoring")
	assert.Contains(t, buf.String(), "handler=booking")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelWarn, Format: "json", Output: &buf})

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	logger.Warn("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLevel("bogus"))
}

func TestLogRouteDecision(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelInfo, Format: "text", Output: &buf})

	LogRouteDecision(logger, "sess-1", "threshold", &core.RoutingDecision{
		SelectedHandler: "booking",
		PreviousHandler: "query",
		Changed:         true,
		Confidence:      0.8,
		Reason:          "challenger cleared the bar",
	}, 5*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "route decision")
	assert.Contains(t, out, "selected=booking")
	assert.Contains(t, out, "changed=true")
}
