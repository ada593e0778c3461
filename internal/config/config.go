package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weather-widget/internal/validation"
)

// Config holds widget configuration loaded from YAML, .env and env.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	CircuitBreakerEnabled          bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration

	RequestTimeout  time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	ShutdownTimeout time.Duration

	HistoryBackend        string // "file", "memory", "sqlite" or "memcached"
	HistoryFilePath       string
	HistorySQLitePath     string
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	GeolocationProvider string // "ip", "static" or "none"
	GeolocationDenied   bool
	StaticLatitude      float64
	StaticLongitude     float64
	IPLookupURL         string

	DefaultCity   string
	CityMaxLength int
}

type fileConfig struct {
	Server struct {
		Port            string `yaml:"port"`
		RequestTimeout  string `yaml:"request_timeout"`
		RateLimitRPS    int    `yaml:"rate_limit_rps"`
		RateLimitBurst  int    `yaml:"rate_limit_burst"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
		Retry   struct {
			MaxAttempts int    `yaml:"max_attempts"`
			BaseDelay   string `yaml:"base_delay"`
			MaxDelay    string `yaml:"max_delay"`
		} `yaml:"retry"`
	} `yaml:"weather_api"`

	CircuitBreaker struct {
		Enabled          bool   `yaml:"enabled"`
		FailureThreshold int    `yaml:"failure_threshold"`
		SuccessThreshold int    `yaml:"success_threshold"`
		Timeout          string `yaml:"timeout"`
	} `yaml:"circuit_breaker"`

	History struct {
		Backend    string `yaml:"backend"`
		FilePath   string `yaml:"file_path"`
		SQLitePath string `yaml:"sqlite_path"`
		Memcached  struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"history"`

	Geolocation struct {
		Provider    string   `yaml:"provider"`
		Permission  string   `yaml:"permission"`
		Latitude    *float64 `yaml:"latitude"`
		Longitude   *float64 `yaml:"longitude"`
		IPLookupURL string   `yaml:"ip_lookup_url"`
	} `yaml:"geolocation"`

	Widget struct {
		DefaultCity   string `yaml:"default_city"`
		CityMaxLength int    `yaml:"city_max_length"`
	} `yaml:"widget"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration from CONFIG_FILE, or config/{ENV_NAME}.yaml (default dev),
// after loading an optional .env. A missing default config file means built-in defaults.
// API key comes from WEATHER_API_KEY env or config/secrets.yaml. Call from project root.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	fc, err := readFileConfig(cwd)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(fc.Server.Port)
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))
	if cfg.WeatherAPIKey == "" {
		key, err := readSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, .env or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = strings.TrimSpace(fc.WeatherAPI.URL)
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 10*time.Second)

	cfg.RetryAttempts = fc.WeatherAPI.Retry.MaxAttempts
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	cfg.RetryBaseDelay = parseDuration(fc.WeatherAPI.Retry.BaseDelay, 100*time.Millisecond)
	cfg.RetryMaxDelay = parseDuration(fc.WeatherAPI.Retry.MaxDelay, 2*time.Second)

	cfg.CircuitBreakerEnabled = fc.CircuitBreaker.Enabled
	cfg.CircuitBreakerFailureThreshold = fc.CircuitBreaker.FailureThreshold
	if cfg.CircuitBreakerFailureThreshold <= 0 {
		cfg.CircuitBreakerFailureThreshold = 5
	}
	cfg.CircuitBreakerSuccessThreshold = fc.CircuitBreaker.SuccessThreshold
	if cfg.CircuitBreakerSuccessThreshold <= 0 {
		cfg.CircuitBreakerSuccessThreshold = 1
	}
	cfg.CircuitBreakerTimeout = parseDuration(fc.CircuitBreaker.Timeout, 30*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Server.RequestTimeout, 15*time.Second)
	cfg.RateLimitRPS = fc.Server.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 20
	}
	cfg.RateLimitBurst = fc.Server.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 40
	}
	cfg.ShutdownTimeout = parseDuration(fc.Server.ShutdownTimeout, 10*time.Second)

	cfg.HistoryBackend = envOr("HISTORY_BACKEND", fc.History.Backend)
	cfg.HistoryBackend = strings.ToLower(cfg.HistoryBackend)
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = "file"
	}
	cfg.HistoryFilePath = strings.TrimSpace(fc.History.FilePath)
	if cfg.HistoryFilePath == "" {
		cfg.HistoryFilePath = "data/last_city.yaml"
	}
	cfg.HistorySQLitePath = strings.TrimSpace(fc.History.SQLitePath)
	if cfg.HistorySQLitePath == "" {
		cfg.HistorySQLitePath = "data/widget.db"
	}
	cfg.MemcachedAddrs = envOr("MEMCACHED_ADDRS", fc.History.Memcached.Addrs)
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.History.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.History.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.GeolocationProvider = strings.ToLower(envOr("GEOLOCATION_PROVIDER", fc.Geolocation.Provider))
	if cfg.GeolocationProvider == "" {
		cfg.GeolocationProvider = "ip"
	}
	permission := strings.ToLower(strings.TrimSpace(fc.Geolocation.Permission))
	switch permission {
	case "", "granted":
	case "denied":
		cfg.GeolocationDenied = true
	default:
		return nil, fmt.Errorf("geolocation.permission must be granted or denied, got %q", fc.Geolocation.Permission)
	}
	if fc.Geolocation.Latitude != nil {
		cfg.StaticLatitude = *fc.Geolocation.Latitude
	}
	if fc.Geolocation.Longitude != nil {
		cfg.StaticLongitude = *fc.Geolocation.Longitude
	}
	if cfg.GeolocationProvider == "static" && (fc.Geolocation.Latitude == nil || fc.Geolocation.Longitude == nil) {
		return nil, fmt.Errorf("geolocation.provider static requires latitude and longitude")
	}
	cfg.IPLookupURL = strings.TrimSpace(fc.Geolocation.IPLookupURL)

	cfg.DefaultCity = envOr("DEFAULT_CITY", fc.Widget.DefaultCity)
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "lahore"
	}
	cfg.CityMaxLength = fc.Widget.CityMaxLength
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 100
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFileConfig parses the YAML config. An explicit CONFIG_FILE must exist;
// the per-environment default may be absent.
func readFileConfig(cwd string) (fileConfig, error) {
	var fc fileConfig

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	explicit := path != ""
	if !explicit {
		env := os.Getenv("ENV_NAME")
		if env == "" {
			env = "dev"
		}
		path = filepath.Join(cwd, "config", env+".yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return fc, fmt.Errorf("config file not found: %s", path)
			}
			return fc, nil
		}
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func readSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.WeatherAPIKey), nil
}

// envOr returns the trimmed env var when set, otherwise the trimmed fallback.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero and negative durations are returned as-is for validate to reject.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load checks. RequestTimeout is raised above
// WeatherAPITimeout so a lookup is never cut off by its own request.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.WeatherAPITimeout {
		cfg.RequestTimeout = cfg.WeatherAPITimeout + time.Second
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", cfg.ServerPort)
	}
	switch cfg.HistoryBackend {
	case "file", "memory", "sqlite", "memcached":
	default:
		return fmt.Errorf("history.backend must be file, memory, sqlite or memcached, got %q", cfg.HistoryBackend)
	}
	switch cfg.GeolocationProvider {
	case "ip", "static", "none":
	default:
		return fmt.Errorf("geolocation.provider must be ip, static or none, got %q", cfg.GeolocationProvider)
	}
	if err := validation.ValidateCoordinates(cfg.StaticLatitude, cfg.StaticLongitude); err != nil {
		return fmt.Errorf("geolocation: %w", err)
	}
	if _, err := validation.ValidateCity(cfg.DefaultCity, cfg.CityMaxLength); err != nil {
		return fmt.Errorf("widget.default_city %q: %w", cfg.DefaultCity, err)
	}
	return nil
}
