package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DEEPGRAM_API_KEY", "REDIS_ADDRESS", "REDIS_PASSWORD", "LOG_LEVEL",
		"EXAMVOICE_DEEPGRAM_API_KEY", "EXAMVOICE_REDIS_ADDR", "EXAMVOICE_LOG_LEVEL",
		"EXAMVOICE_EXAMS_WARNINGS", "EXAMVOICE_TIMINGS_SILENCE_TIMEOUT", "EXAMVOICE_AUDIO_SAMPLE_RATE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := LoadFrom(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, "nova-3", c.Deepgram.Model)
	assert.Equal(t, "aura-2-thalia-en", c.Deepgram.Voice)
	assert.Equal(t, 16000, c.Audio.SampleRate)
	assert.Equal(t, []time.Duration{5 * time.Minute, time.Minute}, c.Exams.Warnings)
	assert.Equal(t, 500*time.Millisecond, c.Timings.PostStopBeforeSpeak)
	assert.Equal(t, 800*time.Millisecond, c.Timings.PostStopBeforeListen)
	assert.Equal(t, 300*time.Millisecond, c.Timings.PostSpeechBuffer)
	assert.Equal(t, 10*time.Second, c.Timings.SilenceTimeout)
	assert.Equal(t, 1500*time.Millisecond, c.Timings.RecognitionRetryDelay)
	assert.Equal(t, "info", c.Log.Level)
	assert.Empty(t, c.Redis.Addr)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/examvoice.yaml", []byte(`
deepgram:
  voice: aura-luna-en
exams:
  path: /srv/exams
  warnings: [10m, 2m]
redis:
  addr: localhost:6379
  ttl: 24h
timings:
  silence_timeout: 8s
`), 0o644))

	t.Setenv("DEEPGRAM_API_KEY", "from-env")
	t.Setenv("EXAMVOICE_LOG_LEVEL", "debug")

	c, err := LoadFrom(fs, "/etc/examvoice.yaml")
	require.NoError(t, err)

	assert.Equal(t, "from-env", c.Deepgram.APIKey)
	assert.Equal(t, "aura-luna-en", c.Deepgram.Voice)
	assert.Equal(t, "/srv/exams", c.Exams.Path)
	assert.Equal(t, []time.Duration{10 * time.Minute, 2 * time.Minute}, c.Exams.Warnings)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 24*time.Hour, c.Redis.TTL)
	assert.Equal(t, 8*time.Second, c.Timings.SilenceTimeout)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadWarningsFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMVOICE_EXAMS_WARNINGS", "2m,30s")

	c, err := LoadFrom(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Minute, 30 * time.Second}, c.Exams.Warnings)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	clearEnv(t)

	t.Setenv("EXAMVOICE_AUDIO_SAMPLE_RATE", "44100")
	_, err := LoadFrom(afero.NewMemMapFs(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio.sample_rate")

	t.Setenv("EXAMVOICE_AUDIO_SAMPLE_RATE", "16000")
	t.Setenv("EXAMVOICE_EXAMS_WARNINGS", "soon")
	_, err = LoadFrom(afero.NewMemMapFs(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exams.warnings")
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFrom(afero.NewMemMapFs(), "/nowhere.yaml")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DEEPGRAM_API_KEY=dotenv-key\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, LoadDotEnv(envFile))
	t.Cleanup(func() { _ = os.Unsetenv("DEEPGRAM_API_KEY") })

	c, err := LoadFrom(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", c.Deepgram.APIKey)
}
