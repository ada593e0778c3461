package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateCity_EmptyAndWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab", "\t"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCity(tc.input, 100)
			if !errors.Is(err, ErrCityEmpty) {
				t.Errorf("error = %v, want ErrCityEmpty", err)
			}
			if err.Error() != MessageCityEmpty {
				t.Errorf("error text = %q, want %q", err.Error(), MessageCityEmpty)
			}
		})
	}
}

func TestValidateCity_TooLong(t *testing.T) {
	_, err := ValidateCity(strings.Repeat("a", 101), 100)
	if !errors.Is(err, ErrCityTooLong) {
		t.Errorf("error = %v, want ErrCityTooLong", err)
	}
	if _, err := ValidateCity(strings.Repeat("a", 101), 0); err != nil {
		t.Errorf("maxLen 0 should disable the length check, got %v", err)
	}
}

func TestValidateCity_InvalidChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"slash", "la/hore"},
		{"ampersand", "lahore&appid=x"},
		{"question", "lahore?"},
		{"angle", "<script>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCity(tc.input, 100)
			if !errors.Is(err, ErrCityInvalidChars) {
				t.Errorf("error = %v, want ErrCityInvalidChars", err)
			}
		})
	}
}

func TestValidateCity_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Lahore", "Lahore"},
		{"trimmed", "  lahore  ", "lahore"},
		{"country suffix", "Lahore, PK", "Lahore, PK"},
		{"hyphen", "Winston-Salem", "Winston-Salem"},
		{"apostrophe and dot", "St. John's", "St. John's"},
		{"unicode", "São Paulo", "São Paulo"},
		{"urdu", "لاہور", "لاہور"},
		{"parentheses", "Frankfurt (Oder)", "Frankfurt (Oder)"},
		{"curly apostrophe", "Ta’ Xbiex", "Ta’ Xbiex"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateCity(tc.input, 100)
			if err != nil {
				t.Fatalf("ValidateCity(%q) error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ValidateCity(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanSavedCity(t *testing.T) {
	got, err := CleanSavedCity("  Frankfurt (Oder) ")
	if err != nil || got != "Frankfurt (Oder)" {
		t.Errorf("CleanSavedCity() = %q, %v; want Frankfurt (Oder), nil", got, err)
	}
	long := strings.Repeat("a", 300)
	if got, err := CleanSavedCity(long); err != nil || got != long {
		t.Errorf("CleanSavedCity() should not apply a length limit, got err %v", err)
	}
	if _, err := CleanSavedCity(" \t "); !errors.Is(err, ErrCityEmpty) {
		t.Errorf("CleanSavedCity(blank) error = %v, want ErrCityEmpty", err)
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantLat float64
		wantLon float64
		wantErr bool
	}{
		{"valid", "31.5497", "74.3436", 31.5497, 74.3436, false},
		{"whitespace", " -33.86 ", " 151.2 ", -33.86, 151.2, false},
		{"edges", "90", "-180", 90, -180, false},
		{"bad latitude", "north", "74", 0, 0, true},
		{"bad longitude", "31", "", 0, 0, true},
		{"latitude out of range", "91", "0", 0, 0, true},
		{"longitude out of range", "0", "180.5", 0, 0, true},
		{"nan", "NaN", "0", 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinates(tc.lat, tc.lon)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCoordinates) {
					t.Fatalf("ParseCoordinates() error = %v, want ErrInvalidCoordinates", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCoordinates() error = %v", err)
			}
			if lat != tc.wantLat || lon != tc.wantLon {
				t.Errorf("ParseCoordinates() = %v,%v, want %v,%v", lat, lon, tc.wantLat, tc.wantLon)
			}
		})
	}
}

func TestValidateCoordinates_Inf(t *testing.T) {
	if err := ValidateCoordinates(0, math.Inf(1)); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("ValidateCoordinates(0, +Inf) error = %v, want ErrInvalidCoordinates", err)
	}
}
