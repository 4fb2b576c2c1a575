package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvHost, EnvDataFile, EnvLogLevel} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParseEnv_ReadsVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://custom.example/api")
	t.Setenv(EnvHost, "myapp.vercel.app")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, ""))

	assert.Equal(t, "https://custom.example/api", cfg.APIURL)
	assert.Equal(t, "myapp.vercel.app", cfg.Host)
	assert.Equal(t, "quizera.db", cfg.DataFile)
}

func TestParseEnv_DotenvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZERA_API_URL=https://dotenv.example/api\nQUIZERA_DATA_FILE=/tmp/q.db\n"), 0o600))

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, path))

	assert.Equal(t, "https://dotenv.example/api", cfg.APIURL)
	assert.Equal(t, "/tmp/q.db", cfg.DataFile)
}

func TestParseEnv_ProcessEnvWinsOverDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://process.example/api")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZERA_API_URL=https://dotenv.example/api\n"), 0o600))

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, path))

	assert.Equal(t, "https://process.example/api", cfg.APIURL)
}

func TestParseEnv_MissingDotenvIgnored(t *testing.T) {
	clearEnv(t)

	cfg := &Config{Host: "keep"}
	assert.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "keep", cfg.Host)
}

func TestParseEnv_MalformedDotenvReported(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHost, "from-process")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZERA_API_URL=https://dotenv.example/api\nnot-a-valid-line\n"), 0o600))

	cfg := &Config{}
	err := parseEnv(cfg, path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, "from-process", cfg.Host, "the process environment still applies")
}

func TestParseEnv_UnreadableDotenvReported(t *testing.T) {
	clearEnv(t)

	cfg := &Config{}
	err := parseEnv(cfg, t.TempDir())

	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}
