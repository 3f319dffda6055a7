// ABOUTME: Service configuration
// ABOUTME: Typed config loaded from an optional YAML file, then environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/extract"
	"github.com/hippolingua/hippolingua/internal/ingest"
	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/version"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Debug    bool           `yaml:"debug"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Name           string        `yaml:"name"`
	EnableMDNS     bool          `yaml:"enable_mdns"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig selects and configures the blob backend
type StorageConfig struct {
	Backend         string  `yaml:"backend"` // s3, gcs, local, http, tone
	Bucket          string  `yaml:"bucket"`
	Prefix          string  `yaml:"prefix"`
	ProjectID       string  `yaml:"project_id"`
	CredentialsPath string  `yaml:"credentials_path"`
	Region          string  `yaml:"region"`
	Endpoint        string  `yaml:"endpoint"`
	AccessKeyID     string  `yaml:"access_key_id"`
	SecretAccessKey string  `yaml:"secret_access_key"`
	LocalDir        string  `yaml:"local_dir"`
	BaseURL         string  `yaml:"base_url"`
	ToneSeconds     float64 `yaml:"tone_seconds"`
}

// CacheConfig configures the local blob cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Directory string        `yaml:"directory"`
	TTL       time.Duration `yaml:"ttl"`
}

// PlaybackConfig holds the extractor's playback policy
type PlaybackConfig struct {
	SpeedRange       SpeedRange `yaml:"speed_range"`
	SupportedFormats []string   `yaml:"supported_formats"`
	RepeatCount      int        `yaml:"repeat_count"`
}

// SpeedRange bounds playback speed. YAML accepts {min, max} or [min, max].
type SpeedRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// UnmarshalYAML accepts both the mapping and the two-element list form
func (r *SpeedRange) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var pair []float64
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("speed_range list must have 2 elements, got %d", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}

	type plain SpeedRange
	return value.Decode((*plain)(r))
}

// LogConfig configures logging
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// IngestConfig configures the ingestion CLI
type IngestConfig struct {
	Provider            string   `yaml:"provider"` // gemini or openai
	Model               string   `yaml:"model"`
	APIKey              string   `yaml:"api_key"`
	Location            string   `yaml:"location"`
	Languages           []string `yaml:"languages"`
	DiarizationSpeakers int      `yaml:"diarization_speakers"`
	Concurrency         int      `yaml:"concurrency"`
	MaxFileSizeMB       int      `yaml:"max_file_size_mb"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			Name:           version.Product,
			EnableMDNS:     true,
			RequestTimeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     blob.BackendGCS,
			Bucket:      "hippoapp-audio-storage",
			Prefix:      "audio",
			ProjectID:   "hippoapp-gcp",
			Region:      "us-east-1",
			LocalDir:    "./data",
			ToneSeconds: 10,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Directory: "/tmp/hippoapp-cache",
		},
		Playback: PlaybackConfig{
			SpeedRange:       SpeedRange{Min: 0.5, Max: 2.0},
			SupportedFormats: []string{"mp3", "wav", "flac", "ogg"},
			RepeatCount:      3,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Ingest: IngestConfig{
			Provider:            "gemini",
			Model:               "gemini-2.5-flash",
			Location:            "us-central1",
			Languages:           []string{"en-US", "ja-JP", "fr-FR", "es-ES", "de-DE", "it-IT", "zh-CN", "ko-KR", "ru-RU", "pt-BR", "ar-SA"},
			DiarizationSpeakers: 3,
			Concurrency:         4,
			MaxFileSizeMB:       100,
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid integer %q", key, v))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid number %q", key, v))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, v))
				return
			}
			*dst = d
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}

	str("HOST", &c.Server.Host)
	integer("PORT", &c.Server.Port)
	str("HIPPO_SERVER_NAME", &c.Server.Name)
	boolean("HIPPO_ENABLE_MDNS", &c.Server.EnableMDNS)
	duration("HIPPO_REQUEST_TIMEOUT", &c.Server.RequestTimeout)

	str("HIPPO_STORAGE_BACKEND", &c.Storage.Backend)
	str("HIPPO_BUCKET", &c.Storage.Bucket)
	str("HIPPO_PREFIX", &c.Storage.Prefix)
	str("GCP_PROJECT_ID", &c.Storage.ProjectID)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Storage.CredentialsPath)
	str("HIPPO_S3_REGION", &c.Storage.Region)
	str("HIPPO_S3_ENDPOINT", &c.Storage.Endpoint)
	str("HIPPO_S3_ACCESS_KEY_ID", &c.Storage.AccessKeyID)
	str("HIPPO_S3_SECRET_ACCESS_KEY", &c.Storage.SecretAccessKey)
	str("HIPPO_LOCAL_DIR", &c.Storage.LocalDir)
	str("HIPPO_BASE_URL", &c.Storage.BaseURL)
	float("HIPPO_TONE_SECONDS", &c.Storage.ToneSeconds)

	boolean("HIPPO_CACHE_ENABLED", &c.Cache.Enabled)
	str("HIPPO_CACHE_DIR", &c.Cache.Directory)
	duration("HIPPO_CACHE_TTL", &c.Cache.TTL)

	float("HIPPO_MIN_SPEED", &c.Playback.SpeedRange.Min)
	float("HIPPO_MAX_SPEED", &c.Playback.SpeedRange.Max)
	list("HIPPO_SUPPORTED_FORMATS", &c.Playback.SupportedFormats)
	integer("HIPPO_REPEAT_COUNT", &c.Playback.RepeatCount)

	str("HIPPO_LOG_LEVEL", &c.Log.Level)
	str("HIPPO_LOG_FORMAT", &c.Log.Format)
	str("HIPPO_LOG_FILE", &c.Log.File)

	str("HIPPO_INGEST_PROVIDER", &c.Ingest.Provider)
	str("HIPPO_INGEST_MODEL", &c.Ingest.Model)
	str("HIPPO_INGEST_API_KEY", &c.Ingest.APIKey)
	str("HIPPO_INGEST_LOCATION", &c.Ingest.Location)
	list("HIPPO_INGEST_LANGUAGES", &c.Ingest.Languages)
	integer("HIPPO_DIARIZATION_SPEAKERS", &c.Ingest.DiarizationSpeakers)
	integer("HIPPO_INGEST_CONCURRENCY", &c.Ingest.Concurrency)

	boolean("HIPPO_DEBUG", &c.Debug)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the whole configuration and reports every problem found
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		add("server.request_timeout must be positive")
	}

	switch c.Storage.Backend {
	case blob.BackendS3, blob.BackendGCS:
		if c.Storage.Bucket == "" {
			add("storage.bucket is required for the %s backend", c.Storage.Backend)
		}
		if c.Storage.Backend == blob.BackendS3 && c.Storage.Region == "" {
			add("storage.region is required for the s3 backend")
		}
	case blob.BackendLocal:
		if c.Storage.LocalDir == "" {
			add("storage.local_dir is required for the local backend")
		}
	case blob.BackendHTTP:
		if c.Storage.BaseURL == "" {
			add("storage.base_url is required for the http backend")
		}
	case blob.BackendTone:
		if c.Storage.ToneSeconds <= 0 {
			add("storage.tone_seconds must be positive")
		}
	default:
		add("invalid storage.backend %q (must be: s3, gcs, local, http, tone)", c.Storage.Backend)
	}

	if c.Cache.Enabled && c.Cache.Directory == "" {
		add("cache.directory is required when the cache is enabled")
	}
	if c.Cache.TTL < 0 {
		add("cache.ttl must not be negative")
	}

	if err := c.Extractor().Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			add("playback: %s", line)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("invalid log.level %q (must be: debug, info, warn, error)", c.Log.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		add("invalid log.format %q (must be: text, json)", c.Log.Format)
	}

	switch c.Ingest.Provider {
	case "gemini", "openai":
	default:
		add("invalid ingest.provider %q (must be: gemini, openai)", c.Ingest.Provider)
	}
	if c.Ingest.Concurrency < 1 {
		add("ingest.concurrency must be at least 1")
	}
	if c.Ingest.DiarizationSpeakers < 0 {
		add("ingest.diarization_speakers must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Extractor converts the playback section to the extractor's policy.
// Unknown format names are kept so Validate can report them.
func (c *Config) Extractor() extract.Config {
	formats := make([]audio.Container, 0, len(c.Playback.SupportedFormats))
	for _, f := range c.Playback.SupportedFormats {
		if parsed, err := audio.ParseContainer(f); err == nil {
			formats = append(formats, parsed)
		} else {
			formats = append(formats, audio.Container(f))
		}
	}
	return extract.Config{
		MinSpeed:         c.Playback.SpeedRange.Min,
		MaxSpeed:         c.Playback.SpeedRange.Max,
		SupportedFormats: formats,
		RepeatCount:      c.Playback.RepeatCount,
	}
}

// BlobOptions converts the storage and cache sections to blob.Options
func (c *Config) BlobOptions() blob.Options {
	return blob.Options{
		Backend:         c.Storage.Backend,
		Bucket:          c.Storage.Bucket,
		Prefix:          c.Storage.Prefix,
		CredentialsPath: c.Storage.CredentialsPath,
		Region:          c.Storage.Region,
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		LocalDir:        c.Storage.LocalDir,
		BaseURL:         c.Storage.BaseURL,
		ToneDuration:    time.Duration(c.Storage.ToneSeconds * float64(time.Second)),
		CacheEnabled:    c.Cache.Enabled,
		Cache: blob.CacheOptions{
			Dir: c.Cache.Directory,
			TTL: c.Cache.TTL,
		},
	}
}

// Logging converts the log section to logging.Config. Debug forces debug level.
func (c *Config) Logging() logging.Config {
	level := c.Log.Level
	if c.Debug {
		level = "debug"
	}
	return logging.Config{
		Level:      level,
		Format:     c.Log.Format,
		WithSource: c.Debug,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// Provider converts the ingest section to ingest.ProviderOptions
func (c *Config) Provider() ingest.ProviderOptions {
	return ingest.ProviderOptions{
		Name:     c.Ingest.Provider,
		Model:    c.Ingest.Model,
		APIKey:   c.Ingest.APIKey,
		Project:  c.Storage.ProjectID,
		Location: c.Ingest.Location,
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
