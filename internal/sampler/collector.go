package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/client"
	"github.com/kjstillabower/weather-sampler/internal/lifecycle"
	"github.com/kjstillabower/weather-sampler/internal/models"
	"github.com/kjstillabower/weather-sampler/internal/observability"
)

var (
	// ErrAttemptsExhausted is returned when MaxAttempts is set and reached
	// before the sample is full.
	ErrAttemptsExhausted = errors.New("sampling attempts exhausted")

	// ErrUnexpected wraps a panic recovered from a single attempt.
	ErrUnexpected = errors.New("unexpected sampling failure")
)

const outcomeUnexpected = "unexpected"

// Config controls the collection loop.
type Config struct {
	// Delay is waited after every attempt, successful or not.
	Delay time.Duration
	// MaxAttempts caps the number of attempts. 0 means unbounded: the loop
	// only ends when the sample is full.
	MaxAttempts int
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Collector accumulates validated records one sequential attempt at a time.
type Collector struct {
	fetcher     client.WeatherClient
	coords      CoordinateSource
	delay       time.Duration
	maxAttempts int
	wait        WaitFunc
	logger      *zap.Logger
}

// NewCollector returns a Collector that draws from coords and fetches through fetcher.
func NewCollector(fetcher client.WeatherClient, coords CoordinateSource, cfg Config, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		fetcher:     fetcher,
		coords:      coords,
		delay:       cfg.Delay,
		maxAttempts: cfg.MaxAttempts,
		wait:        sleepContext,
		logger:      logger,
	}
}

// Collect samples until targetCount records are held. Failed attempts are
// logged and retried with a fresh coordinate. It returns early only when
// MaxAttempts is reached or ctx is done, in both cases with the partial sample.
func (c *Collector) Collect(ctx context.Context, targetCount int) ([]models.WeatherRecord, error) {
	sample := make([]models.WeatherRecord, 0, max(targetCount, 0))
	lifecycle.StartCollecting(targetCount)
	observability.SetSampleProgress(0, targetCount)

	attempts := 0
	for len(sample) < targetCount {
		if c.maxAttempts > 0 && attempts >= c.maxAttempts {
			return sample, fmt.Errorf("%w: %d attempts, %d of %d records", ErrAttemptsExhausted, attempts, len(sample), targetCount)
		}
		attempts++

		coord := c.coords.Next()
		record, err := c.attempt(ctx, coord)
		outcome := observability.OutcomeAccepted
		switch {
		case err != nil:
			outcome = attemptOutcome(err)
			c.logger.Debug("attempt failed", zap.Int("attempt", attempts), zap.String("outcome", outcome))
		case !record.Complete():
			outcome = observability.OutcomeRejected
			c.logger.Info("response missing country or name, discarded",
				zap.Int("attempt", attempts),
				zap.Float64("lat", coord.Latitude),
				zap.Float64("lon", coord.Longitude))
		default:
			sample = append(sample, record)
			c.logger.Info("record added",
				zap.Int("count", len(sample)),
				zap.Int("target", targetCount),
				zap.String("country", record.Country),
				zap.String("name", record.LocationName))
		}

		observability.RecordAttempt(outcome)
		observability.SetSampleProgress(len(sample), targetCount)
		lifecycle.RecordAttempt(len(sample))

		if err := c.wait(ctx, c.delay); err != nil {
			return sample, fmt.Errorf("collection interrupted after %d attempts: %w", attempts, err)
		}
	}

	c.logger.Info("sample complete", zap.Int("records", len(sample)), zap.Int("attempts", attempts))
	return sample, nil
}

// attempt runs one fetch and converts a panic into ErrUnexpected.
func (c *Collector) attempt(ctx context.Context, coord models.Coordinate) (record models.WeatherRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sampling attempt panicked", zap.Any("panic", r), zap.Stack("stack"))
			record = models.WeatherRecord{}
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()
	return c.fetcher.FetchWeather(ctx, coord)
}

func attemptOutcome(err error) string {
	if errors.Is(err, ErrUnexpected) {
		return outcomeUnexpected
	}
	return string(client.CategorizeError(err))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
