// Package config loads the city-events configuration.
//
// Configuration comes from a YAML file layered over a built-in default that
// carries the reference source catalogue. A .env file in the working
// directory is loaded first, and DATABASE_URL, JWT_SECRET, PORT and LOG_LEVEL
// override the file values.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/logger"
	"github.com/pfrederiksen/city-events/internal/source"
)

//go:embed default.yaml
var defaultYAML []byte

// Storage drivers
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// Notifier kinds
const (
	NotifyNone    = "none"
	NotifyLog     = "log"
	NotifyTwitter = "twitter"
)

// Configuration validation errors.
var (
	ErrNoCities            = errors.New("at least one city is required")
	ErrCityMissingName     = errors.New("city name is required")
	ErrNoSources           = errors.New("city has no sources")
	ErrSourceMissingName   = errors.New("source name is required")
	ErrUnknownSourceKind   = errors.New("source kind must be 'cityofsydney' or 'static'")
	ErrSourceMissingURL    = errors.New("live source requires a url")
	ErrUnknownDriver       = errors.New("storage.driver must be 'json' or 'postgres'")
	ErrMissingStoragePath  = errors.New("storage.path is required for the json driver")
	ErrMissingDSN          = errors.New("storage.dsn is required for the postgres driver")
	ErrInvalidTimezone     = errors.New("scrape.timezone is not a known location")
	ErrInvalidFetchTimeout = errors.New("scrape.fetch_timeout must be positive")
	ErrUnknownNotifier     = errors.New("notify.kind must be one of: none, log, twitter")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Cities  []CityConfig  `yaml:"cities"`
	Auth    AuthConfig    `yaml:"auth"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains REST server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	BasePath     string        `yaml:"base_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// StorageConfig selects the event store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// ScrapeConfig controls reconciliation runs.
type ScrapeConfig struct {
	Timezone        string        `yaml:"timezone"`
	UserAgent       string        `yaml:"user_agent"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	SerializeWrites bool          `yaml:"serialize_writes"`
}

// CityConfig is one city and its sources, processed in order.
type CityConfig struct {
	Name    string         `yaml:"name"`
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig is one source of a city.
type SourceConfig struct {
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	URL    string        `yaml:"url"`
	Events []event.Draft `yaml:"events"`
}

// AuthConfig enables operator tokens when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// NotifyConfig selects the announcer for new events.
type NotifyConfig struct {
	Kind string `yaml:"kind"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid built-in default: %v", err))
	}
	return &cfg
}

// Load reads the configuration. An empty path uses the built-in default.
// Values present in the file replace the defaults; lists such as cities are
// replaced as a whole.
func Load(path string) (*Config, error) {
	// A missing .env file is normal
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Storage.Driver = DriverPostgres
		c.Storage.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Cities) == 0 {
		return ErrNoCities
	}

	for i, city := range c.Cities {
		if strings.TrimSpace(city.Name) == "" {
			return fmt.Errorf("%w: cities[%d]", ErrCityMissingName, i)
		}
		if len(city.Sources) == 0 {
			return fmt.Errorf("%w: %s", ErrNoSources, city.Name)
		}
		for j, src := range city.Sources {
			if strings.TrimSpace(src.Name) == "" {
				return fmt.Errorf("%w: %s sources[%d]", ErrSourceMissingName, city.Name, j)
			}
			switch source.Kind(src.Kind) {
			case source.KindCityOfSydney:
				if src.URL == "" {
					return fmt.Errorf("%w: %s", ErrSourceMissingURL, src.Name)
				}
			case source.KindStatic:
			default:
				return fmt.Errorf("%w: %s has %q", ErrUnknownSourceKind, src.Name, src.Kind)
			}
		}
	}

	switch c.Storage.Driver {
	case DriverJSON:
		if c.Storage.Path == "" {
			return ErrMissingStoragePath
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return ErrUnknownDriver
	}

	if _, err := time.LoadLocation(c.Scrape.Timezone); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Scrape.Timezone)
	}

	if c.Scrape.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	switch c.Notify.Kind {
	case "", NotifyNone, NotifyLog, NotifyTwitter:
	default:
		return ErrUnknownNotifier
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return ErrInvalidLogLevel
	}

	return nil
}

// Location returns the reference timezone for date normalization.
// The zone is checked by Validate; an unknown zone falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scrape.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SourceOptions returns the options shared by live adapters.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		UserAgent: c.Scrape.UserAgent,
		Timeout:   c.Scrape.FetchTimeout,
	}
}

// Catalog builds the immutable source catalogue in configured order.
func (c *Config) Catalog(opts source.Options) (source.Catalog, error) {
	cities := make([]source.City, 0, len(c.Cities))
	for _, city := range c.Cities {
		adapters := make([]source.Adapter, 0, len(city.Sources))
		for _, src := range city.Sources {
			a, err := source.New(source.Config{
				Name:   src.Name,
				Kind:   source.Kind(src.Kind),
				URL:    src.URL,
				City:   city.Name,
				Events: src.Events,
			}, opts)
			if err != nil {
				return source.Catalog{}, err
			}
			adapters = append(adapters, a)
		}
		cities = append(cities, source.City{Name: city.Name, Adapters: adapters})
	}
	return source.NewCatalog(cities...), nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	sources := 0
	for _, city := range c.Cities {
		sources += len(city.Sources)
	}
	return fmt.Sprintf(
		"Config{Cities: %d, Sources: %d, Storage: %s, Addr: %s}",
		len(c.Cities),
		sources,
		c.Storage.Driver,
		c.Server.Addr,
	)
}
