package report

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/aggregate"
)

// NoMatchLine is printed when no record matched a target description.
const NoMatchLine = "First description match: no match found"

// Write prints s as human-readable text, one result per line.
func Write(w io.Writer, s aggregate.Summary) error {
	p := &printer{w: w}
	p.printf("Sample size: %d records\n", s.Records)
	if s.HasExtrema {
		p.printf("Highest temperature: %s (%s), %.2f°C\n", s.Hottest.Country, s.Hottest.LocationName, s.Hottest.TemperatureCelsius)
		p.printf("Lowest temperature: %s (%s), %.2f°C\n", s.Coldest.Country, s.Coldest.LocationName, s.Coldest.TemperatureCelsius)
	} else {
		p.printf("Highest temperature: n/a\n")
		p.printf("Lowest temperature: n/a\n")
	}
	if s.HasMean {
		p.printf("Mean temperature: %.2f°C\n", s.MeanTemperature)
	} else {
		p.printf("Mean temperature: n/a\n")
	}
	p.printf("Distinct countries: %d\n", s.DistinctCountries)
	if s.HasFirstMatch {
		p.printf("First description match: %s, %s, %q\n", s.FirstMatch.Country, s.FirstMatch.LocationName, s.FirstMatch.Description)
	} else {
		p.printf("%s\n", NoMatchLine)
	}
	return p.err
}

// Log emits s as a single structured log entry.
func Log(logger *zap.Logger, s aggregate.Summary) {
	fields := []zap.Field{
		zap.Int("records", s.Records),
		zap.Int("distinct_countries", s.DistinctCountries),
	}
	if s.HasExtrema {
		fields = append(fields,
			zap.String("hottest_country", s.Hottest.Country),
			zap.Float64("hottest_temp_c", s.Hottest.TemperatureCelsius),
			zap.String("coldest_country", s.Coldest.Country),
			zap.Float64("coldest_temp_c", s.Coldest.TemperatureCelsius))
	}
	if s.HasMean {
		fields = append(fields, zap.Float64("mean_temp_c", s.MeanTemperature))
	}
	if s.HasFirstMatch {
		fields = append(fields,
			zap.String("match_country", s.FirstMatch.Country),
			zap.String("match_name", s.FirstMatch.LocationName),
			zap.String("match_description", s.FirstMatch.Description))
	} else {
		fields = append(fields, zap.Bool("match_found", false))
	}
	logger.Info("sample summary", fields...)
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
