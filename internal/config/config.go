// Package config loads the examvoice settings from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	Deepgram struct {
		APIKey   string
		Model    string
		Voice    string
		Language string
	}
	Audio struct {
		SampleRate int
	}
	Exams struct {
		Path string
		// Warnings are the remaining times announced during a timed exam.
		Warnings []time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}
	Timings struct {
		PostStopBeforeSpeak   time.Duration
		PostStopBeforeListen  time.Duration
		PostSpeechBuffer      time.Duration
		SilenceTimeout        time.Duration
		RecognitionRetryDelay time.Duration
	}
	Log struct {
		Level string
		File  string
	}
	Metrics struct {
		Addr string
	}
}

// LoadDotEnv loads .env files into the environment. Missing files are not an
// error.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads configFile, if set, from the OS filesystem.
func Load(configFile string) (Config, error) {
	return LoadFrom(afero.NewOsFs(), configFile)
}

// LoadFrom reads configFile, if set, from fsys and overlays the environment.
func LoadFrom(fsys afero.Fs, configFile string) (Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetEnvPrefix("EXAMVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("deepgram.model", "nova-3")
	v.SetDefault("deepgram.voice", "aura-2-thalia-en")
	v.SetDefault("deepgram.language", "en-US")
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("exams.path", "exams")
	v.SetDefault("exams.warnings", []string{"5m", "1m"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "0s")
	v.SetDefault("timings.post_stop_before_speak", "500ms")
	v.SetDefault("timings.post_stop_before_listen", "800ms")
	v.SetDefault("timings.post_speech_buffer", "300ms")
	v.SetDefault("timings.silence_timeout", "10s")
	v.SetDefault("timings.recognition_retry_delay", "1500ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", ":9464")

	// Well-known variables without the prefix.
	_ = v.BindEnv("deepgram.api_key", "EXAMVOICE_DEEPGRAM_API_KEY", "DEEPGRAM_API_KEY")
	_ = v.BindEnv("redis.addr", "EXAMVOICE_REDIS_ADDR", "REDIS_ADDRESS")
	_ = v.BindEnv("redis.password", "EXAMVOICE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("log.level", "EXAMVOICE_LOG_LEVEL", "LOG_LEVEL")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var c Config
	c.Deepgram.APIKey = v.GetString("deepgram.api_key")
	c.Deepgram.Model = v.GetString("deepgram.model")
	c.Deepgram.Voice = v.GetString("deepgram.voice")
	c.Deepgram.Language = v.GetString("deepgram.language")
	c.Audio.SampleRate = v.GetInt("audio.sample_rate")
	c.Exams.Path = v.GetString("exams.path")
	c.Redis.Addr = v.GetString("redis.addr")
	c.Redis.Password = v.GetString("redis.password")
	c.Redis.DB = v.GetInt("redis.db")
	c.Redis.TTL = v.GetDuration("redis.ttl")
	c.Timings.PostStopBeforeSpeak = v.GetDuration("timings.post_stop_before_speak")
	c.Timings.PostStopBeforeListen = v.GetDuration("timings.post_stop_before_listen")
	c.Timings.PostSpeechBuffer = v.GetDuration("timings.post_speech_buffer")
	c.Timings.SilenceTimeout = v.GetDuration("timings.silence_timeout")
	c.Timings.RecognitionRetryDelay = v.GetDuration("timings.recognition_retry_delay")
	c.Log.Level = v.GetString("log.level")
	c.Log.File = v.GetString("log.file")
	c.Metrics.Addr = v.GetString("metrics.addr")

	warnings, err := parseDurations(v.GetStringSlice("exams.warnings"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid exams.warnings: %w", err)
	}
	c.Exams.Warnings = warnings

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseDurations(values []string) ([]time.Duration, error) {
	durations := make([]time.Duration, 0, len(values))
	for _, value := range values {
		// Environment values arrive as one comma or space separated string.
		for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			d, err := time.ParseDuration(part)
			if err != nil {
				return nil, err
			}
			durations = append(durations, d)
		}
	}
	return durations, nil
}

// Validate reports settings that cannot work. A missing Deepgram key is not
// checked here, commands that need the engines check it.
func (c Config) Validate() error {
	var errs []error
	switch c.Audio.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
	default:
		errs = append(errs, fmt.Errorf("unsupported audio.sample_rate %d", c.Audio.SampleRate))
	}
	if c.Timings.SilenceTimeout <= 0 {
		errs = append(errs, errors.New("timings.silence_timeout must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"timings.post_stop_before_speak":  c.Timings.PostStopBeforeSpeak,
		"timings.post_stop_before_listen": c.Timings.PostStopBeforeListen,
		"timings.post_speech_buffer":      c.Timings.PostSpeechBuffer,
		"timings.recognition_retry_delay": c.Timings.RecognitionRetryDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, errors.New("redis.ttl must not be negative"))
	}
	return errors.Join(errs...)
}
