package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weather-sampler/internal/aggregate"
)

const (
	defaultWeatherAPIURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultSampleSize    = 25
	defaultRequestDelay  = 2 * time.Second
	defaultAPITimeout    = 10 * time.Second
)

// Config holds sampler configuration loaded from YAML and env.
type Config struct {
	WeatherAPIKey     string        `validate:"required"`
	WeatherAPIURL     string        `validate:"required,url"`
	WeatherAPITimeout time.Duration `validate:"gt=0"`

	SampleSize   int           `validate:"gt=0"`
	RequestDelay time.Duration `validate:"gte=0"`
	// MaxAttempts caps collector attempts; 0 means no cap.
	MaxAttempts int `validate:"gte=0"`
	// Seed for coordinate generation; 0 seeds from the clock.
	Seed int64

	DescriptionTargets []string `validate:"min=1,dive,required"`

	// MetricsAddr enables the status server (e.g. ":9090"). Empty disables it.
	MetricsAddr string `validate:"omitempty,hostname_port"`
}

type fileConfig struct {
	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Sampling struct {
		SampleSize   int    `yaml:"sample_size"`
		RequestDelay string `yaml:"request_delay"`
		MaxAttempts  int    `yaml:"max_attempts"`
		Seed         int64  `yaml:"seed"`
	} `yaml:"sampling"`

	Aggregate struct {
		DescriptionTargets []string `yaml:"description_targets"`
	} `yaml:"aggregate"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads an optional .env, then config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml from the working directory. A missing env file means
// defaults. The API key comes from WEATHER_API_KEY or the secrets file.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	if err := loadDotEnv(filepath.Join(cwd, ".env")); err != nil {
		return nil, err
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))
	if cfg.WeatherAPIKey == "" {
		key, err := loadAPIKeyFromSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, .env or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = strings.TrimSpace(os.Getenv("WEATHER_API_URL"))
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = strings.TrimSpace(fc.WeatherAPI.URL)
	}
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = defaultWeatherAPIURL
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, defaultAPITimeout)

	cfg.SampleSize = fc.Sampling.SampleSize
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = defaultSampleSize
	}
	cfg.RequestDelay = parseDurationOrZero(fc.Sampling.RequestDelay, defaultRequestDelay)
	cfg.MaxAttempts = fc.Sampling.MaxAttempts
	cfg.Seed = fc.Sampling.Seed

	cfg.DescriptionTargets = fc.Aggregate.DescriptionTargets
	if len(cfg.DescriptionTargets) == 0 {
		cfg.DescriptionTargets = append([]string(nil), aggregate.DefaultDescriptionTargets...)
	}

	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = strings.TrimSpace(fc.Metrics.ListenAddr)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists. Variables
// already set are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func loadAPIKeyFromSecrets(path string) (string, error) {
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

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative values are returned as-is for
// validate to judge.
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

var configValidator = validator.New()

// validate checks struct-tag constraints and reports every failing field.
func validate(cfg *Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), redactValue(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func redactValue(fe validator.FieldError) interface{} {
	if fe.StructField() == "WeatherAPIKey" {
		return "<redacted>"
	}
	return fe.Value()
}
