//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/kjstillabower/weather-sampler/internal/client"
	"github.com/kjstillabower/weather-sampler/internal/sampler"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey string
	APIURL string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openweathermap.org/data/2.5/weather"
	}

	return IntegrationTestConfig{
		APIKey: apiKey,
		APIURL: apiURL,
	}
}

// SetupIntegrationClient creates a weather client against the real API.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.OpenWeatherClient {
	c, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, 10*time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// SetupIntegrationCollector creates a collector over the real API. delay is
// kept short so a small sample finishes quickly; maxAttempts bounds the test.
func SetupIntegrationCollector(t *testing.T, cfg IntegrationTestConfig, delay time.Duration, maxAttempts int) *sampler.Collector {
	return sampler.NewCollector(
		SetupIntegrationClient(t, cfg),
		sampler.NewRandomCoordinates(0),
		sampler.Config{Delay: delay, MaxAttempts: maxAttempts},
		zaptest.NewLogger(t),
	)
}
