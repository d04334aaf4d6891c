package sampler

import "testing"

func TestRandomCoordinates_WithinHalfOpenRanges(t *testing.T) {
	src := NewRandomCoordinates(42)
	for i := 0; i < 10000; i++ {
		c := src.Next()
		if c.Latitude < -90 || c.Latitude >= 90 {
			t.Fatalf("draw %d: latitude %v outside [-90, 90)", i, c.Latitude)
		}
		if c.Longitude < -180 || c.Longitude >= 180 {
			t.Fatalf("draw %d: longitude %v outside [-180, 180)", i, c.Longitude)
		}
	}
}

func TestRandomCoordinates_SeedIsReproducible(t *testing.T) {
	a := NewRandomCoordinates(7)
	b := NewRandomCoordinates(7)
	for i := 0; i < 5; i++ {
		if ca, cb := a.Next(), b.Next(); ca != cb {
			t.Fatalf("draw %d: %+v != %+v for the same seed", i, ca, cb)
		}
	}
}

func TestRandomCoordinates_CoversBothHemispheres(t *testing.T) {
	src := NewRandomCoordinates(1)
	var north, south, east, west bool
	for i := 0; i < 1000; i++ {
		c := src.Next()
		north = north || c.Latitude > 0
		south = south || c.Latitude < 0
		east = east || c.Longitude > 0
		west = west || c.Longitude < 0
	}
	if !north || !south || !east || !west {
		t.Errorf("1000 draws did not cover all hemispheres: N=%v S=%v E=%v W=%v", north, south, east, west)
	}
}
