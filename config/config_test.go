package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[router]
policy = "sticky"
exit_threshold = 0.7
`))
	require.NoError(t, err)
	assert.Equal(t, "sticky", cfg.Router.Policy)
	assert.InDelta(t, 0.7, cfg.Router.ExitThreshold, 1e-9)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 0.6, cfg.Router.BaseThreshold, 1e-9)
	assert.Equal(t, "mock", cfg.Model.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("TEST_ROUTER_API_KEY", "sk-secret")

	cfg, err := Parse([]byte(`
[model]
provider = "openai"
name = "gpt-4o-mini"
api_key = "${TEST_ROUTER_API_KEY}"
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Model.APIKey)
}

func TestParseUnsetEnvExpandsEmpty(t *testing.T) {
	cfg, err := Parse([]byte(`
[model]
provider = "openai"
api_key = "${DEFINITELY_NOT_SET_12345}"
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Model.APIKey)
}

func TestParseDuration(t *testing.T) {
	cfg, err := Parse([]byte(`
[router]
policy = "threshold"
score_ttl = "30s"
`))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Router.ScoreTTL.Duration())
}

func TestValidateRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte(`
[router]
policy = "roulette"
`))
	assert.ErrorContains(t, err, "unknown router policy")

	_, err = Parse([]byte(`
[router]
base_threshold = 1.5
`))
	assert.ErrorContains(t, err, "base_threshold")

	_, err = Parse([]byte(`
[model]
provider = "carrier-pigeon"
`))
	assert.ErrorContains(t, err, "unknown model provider")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[router]
policy = "ownership"

[logging]
level = "debug"
format = "text"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ownership", cfg.Router.Policy)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
