package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/energy-monitor/energy-dashboard/internal/query"
	"gopkg.in/yaml.v3"
)

// Settings contains the application config.
type Settings struct {
	Environment string `env:"ENVIRONMENT" yaml:"environment"`
	LogLevel    string `env:"LOG_LEVEL"   yaml:"logLevel"`
	Port        int    `env:"PORT"        yaml:"port"`
	MonPort     int    `env:"MON_PORT"    yaml:"monPort"`

	// Telemetry API settings
	TelemetryAPIURL string        `env:"TELEMETRY_API_URL" yaml:"telemetryApiUrl"`
	APIKey          string        `env:"API_KEY"           yaml:"apiKey"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"   yaml:"requestTimeout"`

	// Cache settings
	CacheTTL             time.Duration `env:"CACHE_TTL"              yaml:"cacheTtl"`
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" yaml:"cacheCleanupInterval"`

	// Dashboard settings
	PollInterval    time.Duration `env:"POLL_INTERVAL"    yaml:"pollInterval"`
	DeviceTags      []string      `env:"DEVICE_TAGS"      yaml:"deviceTags"      envSeparator:","`
	DevicePageSize  int           `env:"DEVICE_PAGE_SIZE" yaml:"devicePageSize"`
	DisplayTimezone string        `env:"DISPLAY_TIMEZONE" yaml:"displayTimezone"`
}

// Load reads settings from the YAML file at path, if any, and overlays
// environment variables on top.
func Load(path string) (*Settings, error) {
	var settings Settings
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := env.Parse(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	settings.applyDefaults()
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &settings, nil
}

func (s *Settings) applyDefaults() {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.MonPort == 0 {
		s.MonPort = 8888
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 20 * time.Second
	}
	if s.CacheTTL == 0 {
		s.CacheTTL = time.Minute
	}
	if s.CacheCleanupInterval == 0 {
		s.CacheCleanupInterval = 5 * time.Minute
	}
	if s.PollInterval == 0 {
		s.PollInterval = 10 * time.Second
	}
	if len(s.DeviceTags) == 0 {
		s.DeviceTags = []string{"1 Phase"}
	}
	if s.DevicePageSize == 0 {
		s.DevicePageSize = 10
	}
	if s.DisplayTimezone == "" {
		s.DisplayTimezone = "UTC"
	}
}

func (s *Settings) validate() error {
	if s.TelemetryAPIURL == "" {
		return errors.New("TELEMETRY_API_URL is required")
	}
	if u, err := url.Parse(s.TelemetryAPIURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("TELEMETRY_API_URL %q is not an absolute URL", s.TelemetryAPIURL)
	}
	if err := query.ValidatePollInterval(s.PollInterval); err != nil {
		return fmt.Errorf("POLL_INTERVAL: %w", err)
	}
	if s.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if s.CacheTTL < 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if s.DevicePageSize < 0 {
		return errors.New("DEVICE_PAGE_SIZE must be positive")
	}
	if _, err := time.LoadLocation(s.DisplayTimezone); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the display time zone. Settings returned by Load always
// carry a loadable zone.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
