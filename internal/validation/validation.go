package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/kjstillabower/weather-sampler/internal/models"
)

// ErrLatitudeOutOfRange is returned when latitude falls outside [-90, 90].
var ErrLatitudeOutOfRange = errors.New("latitude out of range")

// ErrLongitudeOutOfRange is returned when longitude falls outside [-180, 180].
var ErrLongitudeOutOfRange = errors.New("longitude out of range")

// ErrCoordinateNotFinite is returned for NaN or infinite components.
var ErrCoordinateNotFinite = errors.New("coordinate is not finite")

// ValidateCoordinate checks that c is a finite point the weather API accepts.
// Bounds are inclusive; the sampler only draws from the half-open ranges.
func ValidateCoordinate(c models.Coordinate) error {
	if !isFinite(c.Latitude) || !isFinite(c.Longitude) {
		return ErrCoordinateNotFinite
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: %v", ErrLatitudeOutOfRange, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: %v", ErrLongitudeOutOfRange, c.Longitude)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
