// Package config loads crease settings from defaults, a TOML file, a .env
// file and CREASE_* environment variables, in that order of precedence
// (later wins). Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CREASE"

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = "CREASE_CONFIG"

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Live     LiveConfig     `toml:"live"`
	Batch    BatchConfig    `toml:"batch"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Feed     FeedConfig     `toml:"feed"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path" envconfig:"PATH"`
}

type ServerConfig struct {
	Addr string `toml:"addr" envconfig:"ADDR"`
	// Token, when set, is required as a bearer token on mutating requests.
	Token string `toml:"token" envconfig:"TOKEN"`
}

type ClientConfig struct {
	Server   string   `toml:"server" envconfig:"SERVER"`
	Token    string   `toml:"token" envconfig:"TOKEN"`
	Operator string   `toml:"operator" envconfig:"OPERATOR"`
	Timeout  Duration `toml:"timeout" envconfig:"TIMEOUT"`
}

type LiveConfig struct {
	PollInterval Duration `toml:"poll_interval" envconfig:"POLL_INTERVAL"`
	RecentBalls  int      `toml:"recent_balls" envconfig:"RECENT_BALLS"`
}

type BatchConfig struct {
	Delay Duration `toml:"delay" envconfig:"DELAY"`
}

type ScoringConfig struct {
	// ConsecutiveOver is "enforce" or "advisory".
	ConsecutiveOver string `toml:"consecutive_over" envconfig:"CONSECUTIVE_OVER"`
	DefaultFormat   string `toml:"default_format" envconfig:"DEFAULT_FORMAT"`
	// FormatsFile is an optional CUE file adding or overriding formats.
	FormatsFile string `toml:"formats_file" envconfig:"FORMATS_FILE"`
}

type FeedConfig struct {
	// Brokers enables the Kafka publisher when non-empty.
	Brokers []string `toml:"brokers" envconfig:"BROKERS"`
	Topic   string   `toml:"topic" envconfig:"TOPIC"`
	GroupID string   `toml:"group_id" envconfig:"GROUP_ID"`
}

type LogConfig struct {
	Level  string `toml:"level" envconfig:"LEVEL"`
	Format string `toml:"format" envconfig:"FORMAT"`
}

// Duration wraps time.Duration for TOML and environment decoding.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./data/crease.db"},
		Server:   ServerConfig{Addr: ":8080"},
		Client: ClientConfig{
			Server:  "http://localhost:8080",
			Timeout: Duration{15 * time.Second},
		},
		Live: LiveConfig{
			PollInterval: Duration{5 * time.Second},
			RecentBalls:  6,
		},
		Batch: BatchConfig{Delay: Duration{800 * time.Millisecond}},
		Scoring: ScoringConfig{
			ConsecutiveOver: "enforce",
			DefaultFormat:   "t20",
		},
		Feed: FeedConfig{
			Topic:   "crease.scoring",
			GroupID: "crease-tail",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path names a TOML file; when empty the
// CREASE_CONFIG variable is consulted, and when that is empty too only
// defaults and the environment apply. A .env file in the working directory
// is read if present and never overrides variables already set.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

// LoadWithEnvFile is Load with an explicit .env path. An empty envFile skips
// .env loading.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if path == "" {
		path = lookupConfigPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("parsing config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupConfigPath() string {
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

func applyEnv(cfg *Config) error {
	sections := []struct {
		name   string
		target any
	}{
		{"DATABASE", &cfg.Database},
		{"SERVER", &cfg.Server},
		{"CLIENT", &cfg.Client},
		{"LIVE", &cfg.Live},
		{"BATCH", &cfg.Batch},
		{"SCORING", &cfg.Scoring},
		{"FEED", &cfg.Feed},
		{"LOG", &cfg.Log},
	}
	for _, s := range sections {
		if err := envconfig.Process(EnvPrefix+"_"+s.name, s.target); err != nil {
			return fmt.Errorf("reading %s_%s_* environment: %w", EnvPrefix, s.name, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	var errs []error
	switch c.Scoring.ConsecutiveOver {
	case "enforce", "advisory":
	default:
		errs = append(errs, fmt.Errorf("scoring.consecutive_over: %q is not enforce or advisory", c.Scoring.ConsecutiveOver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: %q is not text or json", c.Log.Format))
	}
	if c.Live.PollInterval.Duration <= 0 {
		errs = append(errs, errors.New("live.poll_interval: must be positive"))
	}
	if c.Live.RecentBalls < 0 {
		errs = append(errs, errors.New("live.recent_balls: must not be negative"))
	}
	if c.Batch.Delay.Duration < 0 {
		errs = append(errs, errors.New("batch.delay: must not be negative"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path: required"))
	}
	return errors.Join(errs...)
}
