package edgepart

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arloliu/edgepart/internal/logging"
	"github.com/arloliu/edgepart/sampler"
)

// EnvPrefix is the prefix of environment variables that override config file values.
// Nested keys are separated by a double underscore: EDGEPART_SAMPLER__SAMPLES=5000
// overrides sampler.samples.
const EnvPrefix = "EDGEPART_"

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is text or json.
	Format string `koanf:"format"`
}

// SamplerConfig controls sampling runs.
type SamplerConfig struct {
	// Samples is the default number of edges per run.
	Samples int `koanf:"samples"`

	// MaxSamples caps the sample count a single run may request.
	MaxSamples int `koanf:"max_samples"`

	// MaxPartitions caps the partition count a run may sample.
	MaxPartitions int `koanf:"max_partitions"`

	// Seed selects the deterministic edge stream.
	Seed uint64 `koanf:"seed"`

	// Workers is the number of goroutines assigning edges.
	Workers int `koanf:"workers"`

	// VertexPool draws vertex IDs from [0, VertexPool) so replication can be
	// measured. 0 draws from the full int64 range and skips replication tracking.
	VertexPool int `koanf:"vertex_pool"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Mode is the gin mode: debug, release or test.
	Mode string `koanf:"mode"`

	// ReadTimeout bounds reading a request.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing a response, including sampling time.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// NATSConfig controls report publishing to a JetStream KV bucket.
type NATSConfig struct {
	// Enabled turns report publishing on.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server URL.
	URL string `koanf:"url"`

	// Bucket is the KV bucket reports are written to.
	Bucket string `koanf:"bucket"`

	// KeyPrefix prefixes report keys: <prefix>.<numParts>.
	KeyPrefix string `koanf:"key_prefix"`

	// History is the number of report revisions the bucket keeps per key.
	History int `koanf:"history"`

	// OperationTimeout bounds each KV operation.
	OperationTimeout time.Duration `koanf:"operation_timeout"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	// Enabled registers the Prometheus collector and serves /metrics.
	Enabled bool `koanf:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `koanf:"namespace"`
}

// Config is the configuration for the edgepart CLI and server.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Sampler SamplerConfig `koanf:"sampler"`
	Server  ServerConfig  `koanf:"server"`
	NATS    NATSConfig    `koanf:"nats"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sampler: SamplerConfig{
			Samples:       100_000,
			MaxSamples:    10_000_000,
			MaxPartitions: 1 << 20,
			Seed:          1,
			Workers:       4,
			VertexPool:    0,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:          false,
			URL:              "nats://127.0.0.1:4222",
			Bucket:           "edgepart-reports",
			KeyPrefix:        "report",
			History:          5,
			OperationTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "edgepart",
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	if cfg.Sampler.Samples == 0 {
		cfg.Sampler.Samples = defaults.Sampler.Samples
	}
	if cfg.Sampler.MaxSamples == 0 {
		cfg.Sampler.MaxSamples = defaults.Sampler.MaxSamples
	}
	if cfg.Sampler.MaxPartitions == 0 {
		cfg.Sampler.MaxPartitions = defaults.Sampler.MaxPartitions
	}
	if cfg.Sampler.Workers == 0 {
		cfg.Sampler.Workers = defaults.Sampler.Workers
	}
	// Seed 0 and VertexPool 0 are valid, so no default is applied.
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = defaults.Server.Mode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = defaults.NATS.URL
	}
	if cfg.NATS.Bucket == "" {
		cfg.NATS.Bucket = defaults.NATS.Bucket
	}
	if cfg.NATS.KeyPrefix == "" {
		cfg.NATS.KeyPrefix = defaults.NATS.KeyPrefix
	}
	if cfg.NATS.History == 0 {
		cfg.NATS.History = defaults.NATS.History
	}
	if cfg.NATS.OperationTimeout == 0 {
		cfg.NATS.OperationTimeout = defaults.NATS.OperationTimeout
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaults.Metrics.Namespace
	}
}

// Validate checks configuration constraints.
//
// Rules:
//   - Log level and format are known
//   - 1 <= Samples <= MaxSamples, MaxPartitions >= 1, Workers >= 1,
//     0 <= VertexPool <= sampler.MaxVertexPool
//   - Server mode is debug, release or test; all server timeouts > 0
//   - With NATS enabled: URL, Bucket and KeyPrefix are set, 1 <= History <= 64,
//     OperationTimeout > 0
//
// Returns:
//   - error: Wraps ErrInvalidConfig with the first violated rule, nil if valid
func (cfg *Config) Validate() error {
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q must be text or json", ErrInvalidConfig, cfg.Log.Format)
	}

	s := cfg.Sampler
	if s.MaxSamples < 1 {
		return fmt.Errorf("%w: sampler.max_samples must be >= 1, got %d", ErrInvalidConfig, s.MaxSamples)
	}
	if s.Samples < 1 || s.Samples > s.MaxSamples {
		return fmt.Errorf("%w: sampler.samples (%d) must be in [1, %d]", ErrInvalidConfig, s.Samples, s.MaxSamples)
	}
	if s.MaxPartitions < 1 {
		return fmt.Errorf("%w: sampler.max_partitions must be >= 1, got %d", ErrInvalidConfig, s.MaxPartitions)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: sampler.workers must be >= 1, got %d", ErrInvalidConfig, s.Workers)
	}
	if s.VertexPool < 0 || s.VertexPool > sampler.MaxVertexPool {
		return fmt.Errorf("%w: sampler.vertex_pool (%d) must be in [0, %d]", ErrInvalidConfig, s.VertexPool, sampler.MaxVertexPool)
	}

	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: server.mode %q must be debug, release or test", ErrInvalidConfig, cfg.Server.Mode)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 || cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be > 0", ErrInvalidConfig)
	}

	if cfg.NATS.Enabled {
		if cfg.NATS.URL == "" || cfg.NATS.Bucket == "" || cfg.NATS.KeyPrefix == "" {
			return fmt.Errorf("%w: nats.url, nats.bucket and nats.key_prefix are required when nats is enabled", ErrInvalidConfig)
		}
		if cfg.NATS.History < 1 || cfg.NATS.History > 64 {
			return fmt.Errorf("%w: nats.history (%d) must be in [1, 64]", ErrInvalidConfig, cfg.NATS.History)
		}
		if cfg.NATS.OperationTimeout <= 0 {
			return fmt.Errorf("%w: nats.operation_timeout must be > 0", ErrInvalidConfig)
		}
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but questionable values.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.Sampler.Samples < 10_000 {
		logger.Warn(
			"sample count is low, balance statistics will be noisy",
			"samples", cfg.Sampler.Samples,
			"recommended", "10000 or higher",
		)
	}

	if cfg.Sampler.VertexPool > 0 && cfg.Sampler.VertexPool > cfg.Sampler.Samples {
		logger.Warn(
			"vertex pool exceeds sample count, most vertices will be seen once",
			"vertexPool", cfg.Sampler.VertexPool,
			"samples", cfg.Sampler.Samples,
		)
	}

	if cfg.Server.WriteTimeout < 10*time.Second {
		logger.Warn(
			"server write timeout is short, large sampling requests may be cut off",
			"writeTimeout", cfg.Server.WriteTimeout,
		)
	}
}

// TestConfig returns a configuration sized for fast tests.
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Log.Level = "debug"
	cfg.Sampler.Samples = 10_000
	cfg.Sampler.MaxSamples = 200_000
	cfg.Sampler.MaxPartitions = 4096
	cfg.Sampler.Workers = 2
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.Mode = "test"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.NATS.OperationTimeout = time.Second

	return cfg
}

// LoadConfig layers defaults, an optional YAML file and EDGEPART_ environment
// variables, then applies SetDefaults and Validate.
//
// Parameters:
//   - path: YAML config file path ("" skips the file)
//
// Returns:
//   - *Config: Loaded configuration
//   - error: File, parse or validation error
//
// Example:
//
//	// sampler.workers from file, overridden by EDGEPART_SAMPLER__WORKERS=8
//	cfg, err := edgepart.LoadConfig("edgepart.yaml")
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps EDGEPART_SAMPLER__MAX_SAMPLES to sampler.max_samples.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
