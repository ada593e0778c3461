//go:build integration
// +build integration

package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/service"
	"github.com/kjstillabower/weather-widget/internal/testhelpers"
	"github.com/kjstillabower/weather-widget/internal/view"
)

func TestWeatherFetcher_Lookup_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	fetcher, store := testhelpers.SetupIntegrationFetcher(t, cfg)
	ctx := context.Background()

	out := fetcher.Lookup(ctx, models.CityQuery("London"), view.Discard)
	if !out.OK() {
		t.Fatalf("Lookup(London) error = %v (%s)", out.Err, out.Message)
	}
	if out.Reading.Country != "GB" {
		t.Errorf("Country = %q, want GB", out.Reading.Country)
	}
	city, ok, err := store.LastCity(ctx)
	if err != nil || !ok || city != out.Reading.City {
		t.Errorf("LastCity() = %q, %v, %v; want %q", city, ok, err, out.Reading.City)
	}
}

func TestWeatherFetcher_NotFound_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	fetcher, _ := testhelpers.SetupIntegrationFetcher(t, cfg)

	out := fetcher.Lookup(context.Background(), models.CityQuery("Qwxzvbnmtown"), view.Discard)
	if !errors.Is(out.Err, client.ErrLocationNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrLocationNotFound", out.Err)
	}
	if out.Message != client.MessageLocationNotFound {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestWeatherFetcher_Start_DefaultCity_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	// A shared memcached may already hold a city from another run.
	cfg.HistoryBackend = history.BackendMemory
	fetcher, _ := testhelpers.SetupIntegrationFetcher(t, cfg)

	out := fetcher.Start(context.Background(), view.Discard)
	if out.Source != service.SourceDefault {
		t.Errorf("Source = %q, want default", out.Source)
	}
	if !out.OK() {
		t.Fatalf("Start() error = %v", out.Err)
	}
	if out.Reading.Country != "PK" {
		t.Errorf("Country = %q, want PK", out.Reading.Country)
	}
}
