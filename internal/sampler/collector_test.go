package sampler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kjstillabower/weather-sampler/internal/client"
	"github.com/kjstillabower/weather-sampler/internal/lifecycle"
	"github.com/kjstillabower/weather-sampler/internal/models"
)

type fetchResult struct {
	record models.WeatherRecord
	err    error
	panic  interface{}
}

// scriptedFetcher replays results in order and then keeps returning a valid
// record built from the call number.
type scriptedFetcher struct {
	script []fetchResult
	calls  int
	coords []models.Coordinate
}

func (f *scriptedFetcher) FetchWeather(ctx context.Context, coord models.Coordinate) (models.WeatherRecord, error) {
	f.coords = append(f.coords, coord)
	i := f.calls
	f.calls++
	if i < len(f.script) {
		r := f.script[i]
		if r.panic != nil {
			panic(r.panic)
		}
		return r.record, r.err
	}
	return validRecord(fmt.Sprintf("C%d", i)), nil
}

func validRecord(country string) models.WeatherRecord {
	return models.WeatherRecord{Country: country, LocationName: "Place " + country, TemperatureCelsius: 10, Description: "clear sky"}
}

type fixedCoordinates struct{ n int }

func (f *fixedCoordinates) Next() models.Coordinate {
	f.n++
	return models.Coordinate{Latitude: float64(f.n), Longitude: float64(-f.n)}
}

// newTestCollector returns a collector whose waits are counted instead of slept.
func newTestCollector(f client.WeatherClient, cfg Config) (*Collector, *int) {
	waits := 0
	c := NewCollector(f, &fixedCoordinates{}, cfg, nil)
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits++
		return ctx.Err()
	}
	return c, &waits
}

func TestCollect_ReturnsExactlyTargetRecords(t *testing.T) {
	f := &scriptedFetcher{}
	c, _ := newTestCollector(f, Config{Delay: 2 * time.Second})

	sample, err := c.Collect(context.Background(), 25)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(sample) != 25 {
		t.Fatalf("len(sample) = %d, want 25", len(sample))
	}
	for i, r := range sample {
		if r.Country == "" || r.LocationName == "" {
			t.Errorf("sample[%d] = %+v has an empty country or name", i, r)
		}
	}
}

func TestCollect_FailuresDoNotHaltCollection(t *testing.T) {
	f := &scriptedFetcher{script: []fetchResult{
		{err: fmt.Errorf("http request failed: %w", errors.New("connection refused"))},
		{err: fmt.Errorf("%w: HTTP 503", client.ErrUpstreamFailure)},
		{err: fmt.Errorf("%w: missing sys", client.ErrInvalidResponse)},
		{record: validRecord("US")},
		{err: fmt.Errorf("request timeout: %w", context.DeadlineExceeded)},
		{record: validRecord("FR")},
	}}
	c, _ := newTestCollector(f, Config{})

	sample, err := c.Collect(context.Background(), 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if f.calls != 6 {
		t.Errorf("fetch calls = %d, want 6", f.calls)
	}
	if len(sample) != 2 || sample[0].Country != "US" || sample[1].Country != "FR" {
		t.Errorf("sample = %+v, want US then FR", sample)
	}
}

func TestCollect_DiscardsIncompleteRecords(t *testing.T) {
	f := &scriptedFetcher{script: []fetchResult{
		{record: models.WeatherRecord{Country: "", LocationName: "Nowhere"}},
		{record: models.WeatherRecord{Country: "BR", LocationName: ""}},
		{record: validRecord("BR")},
	}}
	c, _ := newTestCollector(f, Config{})

	sample, err := c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(sample) != 1 || sample[0] != validRecord("BR") {
		t.Errorf("sample = %+v, want only the complete BR record", sample)
	}
}

func TestCollect_WaitsAfterEveryAttempt(t *testing.T) {
	f := &scriptedFetcher{script: []fetchResult{
		{err: client.ErrRateLimited},
		{record: validRecord("DE")},
		{record: models.WeatherRecord{}},
		{record: validRecord("IT")},
	}}
	c, waits := newTestCollector(f, Config{Delay: 2 * time.Second})

	if _, err := c.Collect(context.Background(), 2); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if *waits != f.calls {
		t.Errorf("waits = %d, want one per attempt (%d)", *waits, f.calls)
	}
}

func TestCollect_RecoversPanickingFetch(t *testing.T) {
	f := &scriptedFetcher{script: []fetchResult{
		{panic: "nil map write"},
		{record: validRecord("JP")},
	}}
	c, _ := newTestCollector(f, Config{})

	sample, err := c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(sample) != 1 || sample[0].Country != "JP" {
		t.Errorf("sample = %+v, want JP after the recovered panic", sample)
	}
}

func TestCollect_NoDeduplication(t *testing.T) {
	same := validRecord("NZ")
	f := &scriptedFetcher{script: []fetchResult{{record: same}, {record: same}}}
	c, _ := newTestCollector(f, Config{})

	sample, err := c.Collect(context.Background(), 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(sample) != 2 || sample[0] != same || sample[1] != same {
		t.Errorf("sample = %+v, want the duplicate record twice", sample)
	}
}

func TestCollect_MaxAttemptsReturnsPartialSample(t *testing.T) {
	f := &scriptedFetcher{script: []fetchResult{
		{record: validRecord("CA")},
		{err: client.ErrUpstreamFailure},
		{err: client.ErrUpstreamFailure},
		{err: client.ErrUpstreamFailure},
	}}
	c, _ := newTestCollector(f, Config{MaxAttempts: 3})

	sample, err := c.Collect(context.Background(), 5)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("Collect() error = %v, want ErrAttemptsExhausted", err)
	}
	if f.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", f.calls)
	}
	if len(sample) != 1 || sample[0].Country != "CA" {
		t.Errorf("sample = %+v, want partial sample with CA", sample)
	}
}

func TestCollect_ContextCanceledStopsAtWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &scriptedFetcher{}
	c := NewCollector(f, &fixedCoordinates{}, Config{Delay: time.Hour}, nil)
	c.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	sample, err := c.Collect(ctx, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Collect() error = %v, want context.Canceled", err)
	}
	if len(sample) != 1 {
		t.Errorf("len(sample) = %d, want 1", len(sample))
	}
}

func TestCollect_ZeroTarget(t *testing.T) {
	f := &scriptedFetcher{}
	c, _ := newTestCollector(f, Config{})

	sample, err := c.Collect(context.Background(), 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(sample) != 0 || f.calls != 0 {
		t.Errorf("Collect(0) made %d calls and returned %d records, want none", f.calls, len(sample))
	}
}

func TestCollect_UpdatesProgress(t *testing.T) {
	lifecycle.Reset()
	f := &scriptedFetcher{script: []fetchResult{
		{err: client.ErrRateLimited},
		{record: validRecord("AR")},
	}}
	c, _ := newTestCollector(f, Config{})

	if _, err := c.Collect(context.Background(), 1); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	got := lifecycle.Snapshot()
	if got.Attempts != 2 || got.Collected != 1 || got.Target != 1 {
		t.Errorf("Snapshot() = %+v, want 2 attempts, 1 of 1 collected", got)
	}
}

func TestAttemptOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: boom", ErrUnexpected), "unexpected"},
		{client.ErrRateLimited, "rate_limited"},
		{fmt.Errorf("%w: missing name", client.ErrInvalidResponse), "invalid_response"},
	}
	for _, tt := range tests {
		if got := attemptOutcome(tt.err); got != tt.want {
			t.Errorf("attemptOutcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext() = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext(canceled) = %v, want context.Canceled", err)
	}
}
