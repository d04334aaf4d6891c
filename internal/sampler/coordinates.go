package sampler

import (
	"math/rand"
	"time"

	"github.com/kjstillabower/weather-sampler/internal/models"
)

// CoordinateSource yields the next coordinate to sample.
type CoordinateSource interface {
	Next() models.Coordinate
}

// RandomCoordinates draws latitude uniformly from [-90, 90) and longitude
// uniformly from [-180, 180). No geographic weighting is applied.
type RandomCoordinates struct {
	rng *rand.Rand
}

// NewRandomCoordinates returns a source seeded with seed, or with the current
// time when seed is 0.
func NewRandomCoordinates(seed int64) *RandomCoordinates {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomCoordinates{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomCoordinates) Next() models.Coordinate {
	return models.Coordinate{
		Latitude:  r.rng.Float64()*180 - 90,
		Longitude: r.rng.Float64()*360 - 180,
	}
}
