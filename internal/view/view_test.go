package view

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/kjstillabower/weather-widget/internal/models"
)

func sampleReading() models.Reading {
	return models.Reading{
		City:        "Lahore",
		Country:     "PK",
		Temperature: 31.5,
		Humidity:    48,
		Description: "clear sky",
		Icon:        "01d",
		WindSpeed:   4.12,
		WindDegrees: 300,
		UTCOffset:   18000,
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{31.5, 32},
		{31.49, 31},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(tt.in); got != tt.want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewSummary(t *testing.T) {
	now := time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)
	s := NewSummary(sampleReading(), now)

	checks := map[string][2]string{
		"Title":       {s.Title, "Lahore, PK"},
		"Temperature": {s.Temperature, "32°C"},
		"Humidity":    {s.Humidity, "48%"},
		"Wind":        {s.Wind, "15 km/h , Deg:300"},
		"IconURL":     {s.IconURL, "https://openweathermap.org/img/wn/01d@2x.png"},
		"IconAlt":     {s.IconAlt, "clear sky"},
		"LocalTime":   {s.LocalTime, "2:07:03 PM-Tue Mar 05 2024"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if s.Theme != ThemeClear {
		t.Errorf("Theme = %q, want clear", s.Theme)
	}
}

func TestLocalTime_NegativeOffsetCrossesMidnight(t *testing.T) {
	now := time.Date(2024, time.March, 5, 2, 0, 0, 0, time.UTC)
	got := LocalTime(now, -5*3600).Format(localTimeLayout)
	if got != "9:00:00 PM-Mon Mar 04 2024" {
		t.Errorf("LocalTime = %q", got)
	}
}

func TestThemeFor(t *testing.T) {
	tests := map[string]Theme{
		"clear sky":        ThemeClear,
		"Clear sky":        ThemeOvercast,
		"few clouds":       ThemeOvercast,
		"light rain":       ThemeOvercast,
		"":                 ThemeOvercast,
		"clear sky, windy": ThemeOvercast,
	}
	for desc, want := range tests {
		if got := ThemeFor(desc); got != want {
			t.Errorf("ThemeFor(%q) = %q, want %q", desc, got, want)
		}
	}
	if ThemeClear.CSSClass() != "blue-bg" || ThemeOvercast.CSSClass() != "grey-bg" {
		t.Error("unexpected CSS classes")
	}
}

func TestTextDisplay(t *testing.T) {
	var out, status bytes.Buffer
	d := NewTextDisplay(&out, &status)

	d.ShowLoading()
	d.Notify("Default weather is set to Lahore.")
	if err := d.ShowSummary(NewSummary(sampleReading(), time.Now())); err != nil {
		t.Fatalf("ShowSummary() error = %v", err)
	}

	if !strings.Contains(status.String(), "Loading...") {
		t.Error("status should contain loading indicator")
	}
	if !strings.Contains(status.String(), "Default weather is set to Lahore.") {
		t.Error("status should contain notice")
	}
	for _, want := range []string{"Lahore, PK", "32°C  clear sky", "Humidity: 48%", "Wind: 15 km/h , Deg:300"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := d.ShowError("City not found! Check spelling."); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Error: City not found! Check spelling.\n" {
		t.Errorf("ShowError output = %q", out.String())
	}
}

func TestTextDisplay_NilStatus(t *testing.T) {
	var out bytes.Buffer
	d := NewTextDisplay(&out, nil)
	d.ShowLoading()
	d.Notify("ignored")
	if out.Len() != 0 {
		t.Errorf("out = %q, want empty", out.String())
	}
}

func TestHTMLDisplay_Summary(t *testing.T) {
	d := NewHTMLDisplay()
	d.SetQuery("lahore")
	d.ShowLoading()
	if err := d.ShowSummary(NewSummary(sampleReading(), time.Now())); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := d.Flush(&buf); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`<body class="blue-bg">`,
		`<h2 id="city-name">Lahore, PK</h2>`,
		`<h1 id="temp">32°C</h1>`,
		`src="https://openweathermap.org/img/wn/01d@2x.png"`,
		`alt="clear sky"`,
		`value="lahore"`,
		`class="loader hidden"`,
		`class="error hidden"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLDisplay_ErrorAndNotices(t *testing.T) {
	d := NewHTMLDisplay()
	d.Notify("Geolocation not supported")
	d.ShowLoading()
	_ = d.ShowError("<b>boom</b>")

	p := d.Page()
	if p.Summary != nil || p.Loading {
		t.Errorf("page = %+v, want no summary and not loading", p)
	}
	if p.BodyClass() != "grey-bg" {
		t.Errorf("BodyClass() = %q, want grey-bg", p.BodyClass())
	}

	var buf bytes.Buffer
	if err := d.Flush(&buf); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, "&lt;b&gt;boom&lt;/b&gt;") {
		t.Error("error message should be escaped")
	}
	if !strings.Contains(html, `<p class="notice">Geolocation not supported</p>`) {
		t.Error("page missing notice")
	}
	if !strings.Contains(html, `<section id="weather-info" class="hidden">`) {
		t.Error("weather section should be hidden")
	}
}

func TestLoadTemplates(t *testing.T) {
	if _, err := loadTemplates(fstest.MapFS{}, "templates"); err == nil {
		t.Error("loadTemplates() on an empty fs should fail")
	}
	fsys := fstest.MapFS{"pages/widget.html": {Data: []byte(`<p>{{.Query}}</p>`)}}
	tmpl, err := loadTemplates(fsys, "pages")
	if err != nil {
		t.Fatalf("loadTemplates() error = %v", err)
	}
	if tmpl.Lookup("widget.html") == nil {
		t.Error("widget.html not parsed")
	}
}
