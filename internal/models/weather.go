package models

import (
	"strconv"
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Query describes what to look up: a city name, or coordinates when City is empty.
type Query struct {
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// CityQuery returns a Query for the named city.
func CityQuery(city string) Query {
	return Query{City: city}
}

// CoordinatesQuery returns a Query for the given position.
func CoordinatesQuery(lat, lon float64) Query {
	return Query{Coordinates: &Coordinates{Latitude: lat, Longitude: lon}}
}

// ByCoordinates reports whether the query is keyed by position rather than name.
func (q Query) ByCoordinates() bool {
	return q.City == "" && q.Coordinates != nil
}

// Kind is a stable label for logs and metrics.
func (q Query) Kind() string {
	if q.ByCoordinates() {
		return "coordinates"
	}
	return "city"
}

func (q Query) String() string {
	if q.ByCoordinates() {
		return q.Coordinates.String()
	}
	return q.City
}

// Reading is one current-weather snapshot as returned by the weather API.
type Reading struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	WindSpeed   float64   `json:"windSpeed"` // m/s
	WindDegrees int       `json:"windDegrees"`
	UTCOffset   int       `json:"utcOffset"` // seconds east of UTC
	Timestamp   time.Time `json:"timestamp"`
}
