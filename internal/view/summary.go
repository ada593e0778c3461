package view

import (
	"fmt"
	"math"
	"time"

	"github.com/kjstillabower/weather-widget/internal/models"
)

// Theme is the page background mode.
type Theme string

const (
	ThemeClear    Theme = "clear"
	ThemeOvercast Theme = "overcast"
)

// CSSClass returns the body class for the theme.
func (t Theme) CSSClass() string {
	if t == ThemeClear {
		return "blue-bg"
	}
	return "grey-bg"
}

// ThemeFor picks the background for a weather description. Only the exact
// OpenWeatherMap description "clear sky" is clear.
func ThemeFor(description string) Theme {
	if description == "clear sky" {
		return ThemeClear
	}
	return ThemeOvercast
}

const (
	iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"
	// 12-hour clock, then the date, as a browser prints toLocaleTimeString and toDateString.
	localTimeLayout = "3:04:05 PM-Mon Jan 02 2006"
)

// Summary is a Reading formatted for display.
type Summary struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	Title       string `json:"title"`
	Temperature string `json:"temperature"`
	TempC       int    `json:"tempC"`
	Description string `json:"description"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	WindKmh     int    `json:"windKmh"`
	WindDegrees int    `json:"windDegrees"`
	IconURL     string `json:"iconUrl"`
	IconAlt     string `json:"iconAlt"`
	LocalTime   string `json:"localTime"`
	Theme       Theme  `json:"theme"`
}

// NewSummary formats r. now is the current instant; the local time shown is
// now shifted to the location's UTC offset.
func NewSummary(r models.Reading, now time.Time) Summary {
	tempC := RoundHalfUp(r.Temperature)
	windKmh := RoundHalfUp(r.WindSpeed * 3.6)
	return Summary{
		City:        r.City,
		Country:     r.Country,
		Title:       fmt.Sprintf("%s, %s", r.City, r.Country),
		Temperature: fmt.Sprintf("%d°C", tempC),
		TempC:       tempC,
		Description: r.Description,
		Humidity:    fmt.Sprintf("%d%%", r.Humidity),
		Wind:        fmt.Sprintf("%d km/h , Deg:%d", windKmh, r.WindDegrees),
		WindKmh:     windKmh,
		WindDegrees: r.WindDegrees,
		IconURL:     fmt.Sprintf(iconURLFormat, r.Icon),
		IconAlt:     r.Description,
		LocalTime:   LocalTime(now, r.UTCOffset).Format(localTimeLayout),
		Theme:       ThemeFor(r.Description),
	}
}

// LocalTime returns now on the wall clock of a place offsetSeconds east of UTC.
func LocalTime(now time.Time, offsetSeconds int) time.Time {
	return now.In(time.FixedZone("", offsetSeconds))
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf
// (2.5 → 3, -2.5 → -2), matching how the widget has always shown temperatures.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
