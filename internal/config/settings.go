package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyBaseURL           = "api.base_url"
	KeyTimeout           = "api.timeout"
	KeyRequestsPerSecond = "api.requests_per_second"
	KeyTheme             = "ui.theme"
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
	KeyLogFile           = "logging.file"
	KeyMetricsAddr       = "metrics.addr"
)

// Settings holds the resolved application configuration.
type Settings struct {
	BaseURL           string
	Theme             string
	LogLevel          string
	LogFormat         string
	LogFile           string
	MetricsAddr       string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:   "http://localhost:8000",
		Timeout:   30 * time.Second,
		Theme:     "default",
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// SetDefaults registers the defaults on v so config files and TARIFA_* env
// vars can override them key by key.
func SetDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyRequestsPerSecond, d.RequestsPerSecond)
	v.SetDefault(KeyTheme, d.Theme)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

// Load resolves Settings from v. It follows this precedence:
// 1. Viper configuration (flags, config file, TARIFA_ env vars)
// 2. TARIFA_API_URL as a short alias for the base URL
// 3. Default values
func Load(v *viper.Viper) (Settings, error) {
	s := DefaultSettings()

	if val := v.GetString(KeyBaseURL); val != "" {
		s.BaseURL = val
	}
	if s.BaseURL == DefaultSettings().BaseURL {
		if val := os.Getenv("TARIFA_API_URL"); val != "" {
			s.BaseURL = val
		}
	}
	if val := v.GetDuration(KeyTimeout); val > 0 {
		s.Timeout = val
	}
	s.RequestsPerSecond = v.GetFloat64(KeyRequestsPerSecond)
	if val := v.GetString(KeyTheme); val != "" {
		s.Theme = val
	}
	if val := v.GetString(KeyLogLevel); val != "" {
		s.LogLevel = val
	}
	if val := v.GetString(KeyLogFormat); val != "" {
		s.LogFormat = val
	}
	s.LogFile = ExpandPath(v.GetString(KeyLogFile))
	s.MetricsAddr = v.GetString(KeyMetricsAddr)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("%w: %s is required", common.ErrMissingConfig, KeyBaseURL)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, KeyBaseURL, s.BaseURL)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyRequestsPerSecond)
	}
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}
