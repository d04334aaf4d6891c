package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. LOG_LEVEL selects the level and
// LOG_FORMAT selects "json" or "console" (default) encoding.
func NewLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = parseLogFormat(os.Getenv("LOG_FORMAT"))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if config.Encoding == "console" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.Level = parseLogLevel(os.Getenv("LOG_LEVEL"))
	config.InitialFields = map[string]interface{}{"service": "weather-sampler"}

	return config.Build()
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

func parseLogFormat(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return "json"
	}
	return "console"
}
