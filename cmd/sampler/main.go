package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/aggregate"
	"github.com/kjstillabower/weather-sampler/internal/client"
	"github.com/kjstillabower/weather-sampler/internal/config"
	httphandler "github.com/kjstillabower/weather-sampler/internal/http"
	"github.com/kjstillabower/weather-sampler/internal/lifecycle"
	"github.com/kjstillabower/weather-sampler/internal/observability"
	"github.com/kjstillabower/weather-sampler/internal/report"
	"github.com/kjstillabower/weather-sampler/internal/sampler"
)

func main() {
	os.Exit(run(os.Stdout))
}

func run(stdout io.Writer) int {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))
	defer func() {
		if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		status, err := httphandler.StartStatusServer(cfg.MetricsAddr, logger)
		if err != nil {
			logger.Error("status server", zap.Error(err))
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := status.Shutdown(shutdownCtx); err != nil {
				logger.Error("status server shutdown", zap.Error(err))
			}
		}()
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout, logger)
	if err != nil {
		logger.Error("weather client", zap.Error(err))
		return 1
	}

	collector := sampler.NewCollector(
		weatherClient,
		sampler.NewRandomCoordinates(cfg.Seed),
		sampler.Config{Delay: cfg.RequestDelay, MaxAttempts: cfg.MaxAttempts},
		logger,
	)
	if cfg.MaxAttempts == 0 {
		logger.Info("no attempt cap configured; collection runs until the sample is full")
	}
	logger.Info("collection starting",
		zap.Int("target", cfg.SampleSize),
		zap.Duration("delay", cfg.RequestDelay),
		zap.Int("max_attempts", cfg.MaxAttempts))

	exitCode := 0
	sample, err := collector.Collect(ctx, cfg.SampleSize)
	if err != nil {
		exitCode = 1
		if ctx.Err() != nil {
			lifecycle.SetShuttingDown(true)
		}
		logger.Warn("collection ended early", zap.Error(err), zap.Int("records", len(sample)))
	}

	lifecycle.SetPhase(lifecycle.PhaseAggregating)
	summary := aggregate.Summarize(sample, cfg.DescriptionTargets)
	report.Log(logger, summary)
	if err := report.Write(stdout, summary); err != nil {
		logger.Error("write report", zap.Error(err))
		exitCode = 1
	}

	if exitCode == 0 {
		lifecycle.SetPhase(lifecycle.PhaseDone)
	} else {
		lifecycle.SetPhase(lifecycle.PhaseInterrupted)
	}
	return exitCode
}
