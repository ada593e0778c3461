//go:build integration
// +build integration

package client

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func integrationClient(t *testing.T) *OpenWeatherClient {
	t.Helper()
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}
	client, err := NewOpenWeatherClient(apiKey, DefaultAPIURL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return client
}

func TestOpenWeatherClient_ValidateAPIKey_Integration(t *testing.T) {
	client := integrationClient(t)
	if err := client.ValidateAPIKey(context.Background()); err != nil {
		t.Errorf("ValidateAPIKey() error = %v, want nil (API key may not be activated yet)", err)
	}
}

func TestOpenWeatherClient_GetByCity_Integration(t *testing.T) {
	client := integrationClient(t)
	reading, err := client.GetByCity(context.Background(), "Lahore")
	if err != nil {
		t.Fatalf("GetByCity() error = %v (API key may not be activated yet)", err)
	}
	if reading.City == "" || reading.Country == "" {
		t.Errorf("GetByCity() reading = %+v, want city and country", reading)
	}
}

func TestOpenWeatherClient_GetByCoordinates_Integration(t *testing.T) {
	client := integrationClient(t)
	reading, err := client.GetByCoordinates(context.Background(), 31.5497, 74.3436)
	if err != nil {
		t.Fatalf("GetByCoordinates() error = %v", err)
	}
	if reading.City == "" {
		t.Error("GetByCoordinates() returned empty city")
	}
}

func TestOpenWeatherClient_GetByCity_NotFound_Integration(t *testing.T) {
	client := integrationClient(t)
	_, err := client.GetByCity(context.Background(), "zzqxnotacityzzqx")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("GetByCity() error = %v, want ErrLocationNotFound", err)
	}
}
