package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MessageCityEmpty is shown when a search is submitted without a city.
const MessageCityEmpty = "enter city name first"

var (
	// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
	ErrCityEmpty = errors.New(MessageCityEmpty)

	// ErrCityTooLong is returned when the city exceeds the configured maximum length.
	ErrCityTooLong = errors.New("city name too long")

	// ErrCityInvalidChars is returned when the city contains characters no place name uses.
	ErrCityInvalidChars = errors.New("city name contains invalid characters")

	// ErrInvalidCoordinates is returned for unparsable or out-of-range latitude/longitude.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ValidateCity trims the input and checks it is non-empty, at most maxLen runes
// (0 disables the check), and made of letters, digits, spaces and the
// punctuation OpenWeatherMap uses in names: , - . ' ’ ( )
// Returns the trimmed name; case is preserved for display.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrCityEmpty
	}
	if maxLen > 0 && len(r) > maxLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// CleanSavedCity trims a city read back from history. Names the API returned
// are trusted, so only emptiness is checked.
func CleanSavedCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	return s, nil
}

func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'', '’', '(', ')':
		return true
	}
	return false
}

// ParseCoordinates parses latitude and longitude strings in decimal degrees
// and checks they are within [-90, 90] and [-180, 180].
func ParseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, lonStr)
	}
	if err := ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// ValidateCoordinates checks range and rejects NaN/Inf.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, lon)
	}
	return nil
}
