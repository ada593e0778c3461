//go:build integration
// +build integration

package testhelpers

import (
	"io"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/geo"
	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey         string
	APIURL         string
	HistoryBackend string // "memory" (default) or "memcached"
	MemcachedAddr  string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultAPIURL
	}

	backend := os.Getenv("INTEGRATION_HISTORY_BACKEND")
	if backend == "" {
		backend = history.BackendMemory
	}
	memcachedAddr := os.Getenv("MEMCACHED_ADDRS")
	if memcachedAddr == "" {
		memcachedAddr = "localhost:11211"
	}

	return IntegrationTestConfig{
		APIKey:         apiKey,
		APIURL:         apiURL,
		HistoryBackend: backend,
		MemcachedAddr:  memcachedAddr,
	}
}

// SetupIntegrationFetcher wires a WeatherFetcher against the live API with
// geolocation denied, so startup always ends at the default city.
// The store is closed by t.Cleanup.
func SetupIntegrationFetcher(t *testing.T, cfg IntegrationTestConfig) (*service.WeatherFetcher, history.Store) {
	t.Helper()
	weatherClient, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	store := openStore(t, cfg)
	fetcher := service.NewWeatherFetcher(service.Options{
		Client:        weatherClient,
		History:       store,
		Locator:       geo.Denied{},
		CityMaxLength: 100,
		Logger:        zaptest.NewLogger(t),
	})
	return fetcher, store
}

func openStore(t *testing.T, cfg IntegrationTestConfig) history.Store {
	t.Helper()
	if cfg.HistoryBackend == history.BackendMemcached {
		mc, err := history.NewMemcachedStore(cfg.MemcachedAddr, 500*time.Millisecond, 2)
		if err == nil && mc.Ping() == nil {
			t.Cleanup(func() { _ = mc.Close() })
			t.Logf("Using memcached history at %s", cfg.MemcachedAddr)
			return mc
		}
		t.Logf("memcached not available at %s, using in-memory history", cfg.MemcachedAddr)
	}
	store, err := history.Open(history.Options{Backend: history.BackendMemory})
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	if c, ok := store.(io.Closer); ok {
		t.Cleanup(func() { _ = c.Close() })
	}
	return store
}
