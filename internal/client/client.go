package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/models"
	"github.com/kjstillabower/weather-sampler/internal/observability"
	"github.com/kjstillabower/weather-sampler/internal/validation"
)

// WeatherClient fetches current weather for a coordinate. A nil error means
// the record was built from a structurally valid response.
type WeatherClient interface {
	FetchWeather(ctx context.Context, coord models.Coordinate) (models.WeatherRecord, error)
}

var (
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrLocationNotFound  = errors.New("location not found")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrRateLimited       = errors.New("rate limited")
	ErrInvalidResponse   = errors.New("incomplete weather response")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

type OpenWeatherClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration, logger *zap.Logger) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchWeather performs one API call for coord. Transport, status, decoding
// and validation failures are logged and returned as errors; none are retried
// here.
func (c *OpenWeatherClient) FetchWeather(ctx context.Context, coord models.Coordinate) (models.WeatherRecord, error) {
	if err := validation.ValidateCoordinate(coord); err != nil {
		return models.WeatherRecord{}, fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}

	record, err := c.callAPI(ctx, coord)
	if err != nil {
		c.logger.Warn("weather fetch failed",
			zap.Float64("lat", coord.Latitude),
			zap.Float64("lon", coord.Longitude),
			zap.String("category", string(CategorizeError(err))),
			zap.Error(err))
		return models.WeatherRecord{}, err
	}
	return record, nil
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, coord models.Coordinate) (models.WeatherRecord, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, coord)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.WeatherRecord{}, fmt.Errorf("build request: %w", err)
	}

	corrID := uuid.NewString()
	req.Header.Set("X-Correlation-ID", corrID)
	c.logger.Info("requesting weather",
		zap.String("url", redactURL(req.URL)),
		zap.String("correlation_id", corrID))

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.WeatherRecord{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.WeatherRecord{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.WeatherRecord{}, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.WeatherRecord{}, fmt.Errorf("read response body: %w", err)
	}

	return parseResponse(body, coord)
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, coord models.Coordinate) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid API key", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

// redactURL returns u as a string with the appid credential masked.
func redactURL(u *url.URL) string {
	redacted := *u
	q := redacted.Query()
	if q.Has("appid") {
		q.Set("appid", "REDACTED")
	}
	redacted.RawQuery = q.Encode()
	return redacted.String()
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
