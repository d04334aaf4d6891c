package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/weather-sampler/internal/models"
)

// unknownPlaceholder fills a country or name the API omitted. Validation
// rejects a missing name before this point, so only country can reach it.
const unknownPlaceholder = "Unknown"

// rawResponse mirrors the subset of the current-weather payload we read.
// Pointers distinguish an absent block from a zero value.
type rawResponse struct {
	Main    *rawMain       `json:"main" validate:"required"`
	Sys     *rawSys        `json:"sys" validate:"required"`
	Weather []rawCondition `json:"weather" validate:"required,min=1"`
	Name    *string        `json:"name" validate:"required,min=1"`
}

type rawMain struct {
	Temp float64 `json:"temp"`
}

type rawSys struct {
	Country *string `json:"country"`
}

type rawCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

var responseValidator = newResponseValidator()

func newResponseValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseResponse decodes body and converts it to a record in one validation
// pass. Any missing required block invalidates the whole response.
func parseResponse(body []byte, coord models.Coordinate) (models.WeatherRecord, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.WeatherRecord{}, fmt.Errorf("parse response: %w", err)
	}
	if err := responseValidator.Struct(raw); err != nil {
		return models.WeatherRecord{}, fmt.Errorf("%w: missing %s", ErrInvalidResponse, strings.Join(invalidFields(err), ", "))
	}
	return raw.toRecord(coord), nil
}

func invalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func (r rawResponse) toRecord(coord models.Coordinate) models.WeatherRecord {
	country := unknownPlaceholder
	if r.Sys.Country != nil {
		country = *r.Sys.Country
	}
	name := unknownPlaceholder
	if r.Name != nil {
		name = *r.Name
	}
	return models.WeatherRecord{
		Country:            country,
		LocationName:       name,
		TemperatureCelsius: r.Main.Temp,
		Description:        r.Weather[0].Description,
		Coordinate:         coord,
	}
}
