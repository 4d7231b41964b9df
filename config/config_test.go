package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap/failure"
	"bootstrap/logging"
)

func TestGetMissing(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := Get(EnvAPIKey)
	var cfgErr *failure.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, EnvAPIKey, cfgErr.Key)
}

func TestGetOptional(t *testing.T) {
	t.Setenv(EnvModel, "")
	assert.Equal(t, DefaultModel, GetOptional(EnvModel, DefaultModel))

	t.Setenv(EnvModel, "gpt-4o")
	assert.Equal(t, "gpt-4o", GetOptional(EnvModel, DefaultModel))
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-primary")
	t.Setenv(EnvAPIKeys, " sk-two, ,sk-three ")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvRequestsPerMinute, "30")
	t.Setenv(EnvOutputRoot, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-primary", cfg.APIKey)
	assert.Equal(t, []string{"sk-primary", "sk-two", "sk-three"}, cfg.APIKeys())
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Equal(t, DefaultOutputRoot, cfg.OutputRoot)
}

func TestLoadRequiresKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := Load()
	var cfgErr *failure.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadRejectsInvalidRequestsPerMinute(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")

	for _, value := range []string{"abc", "-5", "1.5"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv(EnvRequestsPerMinute, value)

			_, err := Load()
			var cfgErr *failure.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, EnvRequestsPerMinute, cfgErr.Key)
			assert.NotEmpty(t, cfgErr.Reason)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GPT_API_KEY=sk-from-file\n"), 0o644))

	LoadEnv(logging.Discard(), path)

	v, err := Get(EnvAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", v)
}
