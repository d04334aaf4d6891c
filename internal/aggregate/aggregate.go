package aggregate

import "github.com/kjstillabower/weather-sampler/internal/models"

// DefaultDescriptionTargets are the phrases FirstDescriptionMatch looks for
// when none are configured.
var DefaultDescriptionTargets = []string{"clear sky", "rain", "few clouds"}

// Summary holds the results of every query over one sample.
type Summary struct {
	Records int

	Hottest    models.WeatherRecord
	Coldest    models.WeatherRecord
	HasExtrema bool

	MeanTemperature float64
	HasMean         bool

	DistinctCountries int

	FirstMatch    models.WeatherRecord
	HasFirstMatch bool
}

// Summarize runs all queries over records. records is not modified.
func Summarize(records []models.WeatherRecord, targets []string) Summary {
	s := Summary{Records: len(records)}
	s.Hottest, s.Coldest, s.HasExtrema = Extrema(records)
	s.MeanTemperature, s.HasMean = MeanTemperature(records)
	s.DistinctCountries = DistinctCountries(records)
	s.FirstMatch, s.HasFirstMatch = FirstDescriptionMatch(records, targets)
	return s
}

// Extrema returns the first record holding the maximum temperature and the
// first holding the minimum, in insertion order. ok is false for an empty sample.
func Extrema(records []models.WeatherRecord) (hottest, coldest models.WeatherRecord, ok bool) {
	if len(records) == 0 {
		return models.WeatherRecord{}, models.WeatherRecord{}, false
	}
	hottest, coldest = records[0], records[0]
	for _, r := range records[1:] {
		// Strict comparisons keep the earliest record on ties.
		if r.TemperatureCelsius > hottest.TemperatureCelsius {
			hottest = r
		}
		if r.TemperatureCelsius < coldest.TemperatureCelsius {
			coldest = r
		}
	}
	return hottest, coldest, true
}

// MeanTemperature returns the arithmetic mean temperature. ok is false for an
// empty sample.
func MeanTemperature(records []models.WeatherRecord) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range records {
		sum += r.TemperatureCelsius
	}
	return sum / float64(len(records)), true
}

// DistinctCountries counts unique country codes, compared case-sensitively.
func DistinctCountries(records []models.WeatherRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Country] = struct{}{}
	}
	return len(seen)
}

// FirstDescriptionMatch returns the first record, in insertion order, whose
// description exactly equals one of targets.
func FirstDescriptionMatch(records []models.WeatherRecord, targets []string) (models.WeatherRecord, bool) {
	want := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		want[t] = struct{}{}
	}
	for _, r := range records {
		if _, ok := want[r.Description]; ok {
			return r, true
		}
	}
	return models.WeatherRecord{}, false
}
