package models

// Coordinate is a point on the globe in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// WeatherRecord is one validated observation in the sample. Country and
// LocationName are always non-empty for records that reach the sample.
type WeatherRecord struct {
	Country            string     `json:"country"`
	LocationName       string     `json:"locationName"`
	TemperatureCelsius float64    `json:"temperatureCelsius"`
	Description        string     `json:"description"`
	Coordinate         Coordinate `json:"coordinate"`
}

// Complete reports whether both country and location name are set.
func (r WeatherRecord) Complete() bool {
	return r.Country != "" && r.LocationName != ""
}
