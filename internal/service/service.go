// Package service holds WeatherFetcher, the widget's one request cycle:
// query → fetch → render → remember, plus the startup fallback chain.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/geo"
	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/validation"
	"github.com/kjstillabower/weather-widget/internal/view"
)

// DefaultCity is used when no city is configured.
const DefaultCity = "lahore"

// MessageGeolocationUnsupported is shown when no location source exists.
const MessageGeolocationUnsupported = "Geolocation not supported"

// Startup sources, as recorded in metrics and Outcome.Source.
const (
	SourceQuery       = "query"
	SourceSaved       = "saved"
	SourceGeolocation = "geolocation"
	SourceDefault     = "default"
)

// Options wires a WeatherFetcher. Client is required; a nil History or
// Locator disables remembering and geolocation respectively.
type Options struct {
	Client        client.WeatherClient
	History       history.Store
	Locator       geo.Locator
	DefaultCity   string
	CityMaxLength int
	Logger        *zap.Logger
}

// WeatherFetcher turns a location query into a rendered weather summary.
// It holds no per-lookup state; the HTTP front end shares one across requests.
type WeatherFetcher struct {
	client      client.WeatherClient
	history     history.Store
	locator     geo.Locator
	defaultCity string
	cityMaxLen  int
	logger      *zap.Logger
	now         func() time.Time
}

func NewWeatherFetcher(opts Options) *WeatherFetcher {
	defaultCity := strings.TrimSpace(opts.DefaultCity)
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	locator := opts.Locator
	if locator == nil {
		locator = geo.Unsupported{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherFetcher{
		client:      opts.Client,
		history:     opts.History,
		locator:     locator,
		defaultCity: defaultCity,
		cityMaxLen:  opts.CityMaxLength,
		logger:      logger,
		now:         time.Now,
	}
}

// Outcome is the result of one lookup: either a rendered summary, or an error
// with the message that was shown in its place.
type Outcome struct {
	Query   models.Query
	Source  string
	Reading models.Reading
	Summary view.Summary
	Err     error
	Message string
}

// OK reports whether the lookup rendered a reading.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// DefaultCityNotice is the notice shown when startup falls back to the default city.
func (f *WeatherFetcher) DefaultCityNotice() string {
	return fmt.Sprintf("Default weather is set to %s.", titleCase(f.defaultCity))
}

// FetchByCity fetches the current weather for a city name.
func (f *WeatherFetcher) FetchByCity(ctx context.Context, city string) (models.Reading, error) {
	r, err := f.client.GetByCity(ctx, city)
	if err != nil {
		return models.Reading{}, fmt.Errorf("fetch weather for %s: %w", city, err)
	}
	return r, nil
}

// FetchByCoordinates fetches the current weather for a position.
func (f *WeatherFetcher) FetchByCoordinates(ctx context.Context, lat, lon float64) (models.Reading, error) {
	r, err := f.client.GetByCoordinates(ctx, lat, lon)
	if err != nil {
		return models.Reading{}, fmt.Errorf("fetch weather for %v,%v: %w", lat, lon, err)
	}
	return r, nil
}

// Lookup runs one request cycle against d. Invalid input is reported without
// making a request. Every failure ends in exactly one ShowError call.
func (f *WeatherFetcher) Lookup(ctx context.Context, q models.Query, d view.Display) Outcome {
	return f.lookup(ctx, q, SourceQuery, d)
}

func (f *WeatherFetcher) lookup(ctx context.Context, q models.Query, source string, d view.Display) Outcome {
	logger := observability.LoggerFromContext(ctx, f.logger)
	out := Outcome{Query: q, Source: source}

	q, err := f.validate(q, source)
	if err != nil {
		observability.RecordLookup(out.Query.Kind(), err)
		return f.fail(ctx, d, out, err, err.Error())
	}
	out.Query = q

	d.ShowLoading()
	start := time.Now()
	var reading models.Reading
	if q.ByCoordinates() {
		reading, err = f.FetchByCoordinates(ctx, q.Coordinates.Latitude, q.Coordinates.Longitude)
	} else {
		reading, err = f.FetchByCity(ctx, q.City)
	}
	observability.RecordLookup(q.Kind(), err)
	if err != nil {
		logger.Warn("weather lookup failed",
			zap.String("kind", q.Kind()),
			zap.String("query", q.String()),
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err),
		)
		return f.fail(ctx, d, out, err, client.UserMessage(err))
	}

	summary, err := f.Render(ctx, d, reading)
	if err != nil {
		// The display itself failed; there is nothing left to show the message on.
		out.Err = fmt.Errorf("render: %w", err)
		out.Message = client.MessageGenericFailure
		logger.Error("render failed", zap.Error(err))
		return out
	}
	logger.Debug("weather rendered",
		zap.String("kind", q.Kind()),
		zap.String("city", reading.City),
		zap.Duration("duration", time.Since(start)),
	)
	out.Reading = reading
	out.Summary = summary
	return out
}

func (f *WeatherFetcher) fail(ctx context.Context, d view.Display, out Outcome, err error, msg string) Outcome {
	out.Err = err
	out.Message = msg
	if showErr := d.ShowError(msg); showErr != nil {
		observability.LoggerFromContext(ctx, f.logger).Error("show error failed", zap.Error(showErr))
	}
	return out
}

// validate checks q before any request. A saved city came back from the API,
// so it is only trimmed.
func (f *WeatherFetcher) validate(q models.Query, source string) (models.Query, error) {
	if q.ByCoordinates() {
		if err := validation.ValidateCoordinates(q.Coordinates.Latitude, q.Coordinates.Longitude); err != nil {
			return q, err
		}
		return q, nil
	}
	var (
		city string
		err  error
	)
	if source == SourceSaved {
		city, err = validation.CleanSavedCity(q.City)
	} else {
		city, err = validation.ValidateCity(q.City, f.cityMaxLen)
	}
	if err != nil {
		return q, err
	}
	return models.CityQuery(city), nil
}

// Render shows reading on d and then remembers its city as the last one searched.
// A reading with no city name (open sea) clears the remembered city.
// Failing to remember is logged only.
func (f *WeatherFetcher) Render(ctx context.Context, d view.Display, reading models.Reading) (view.Summary, error) {
	summary := view.NewSummary(reading, f.now())
	if err := d.ShowSummary(summary); err != nil {
		return view.Summary{}, err
	}
	f.remember(ctx, reading.City)
	return summary, nil
}

func (f *WeatherFetcher) remember(ctx context.Context, city string) {
	if f.history == nil {
		return
	}
	if strings.TrimSpace(city) == "" {
		if err := f.history.ClearLastCity(ctx); err != nil {
			observability.HistoryOperationsTotal.WithLabelValues("clear", "error").Inc()
			observability.LoggerFromContext(ctx, f.logger).Warn("clear last city failed", zap.Error(err))
			return
		}
		observability.HistoryOperationsTotal.WithLabelValues("clear", "success").Inc()
		return
	}
	if err := f.history.SaveLastCity(ctx, city); err != nil {
		observability.HistoryOperationsTotal.WithLabelValues("save", "error").Inc()
		observability.LoggerFromContext(ctx, f.logger).Warn("save last city failed", zap.String("city", city), zap.Error(err))
		return
	}
	observability.HistoryOperationsTotal.WithLabelValues("save", "success").Inc()
}

// Start runs the startup policy: the saved city if there is one, else the
// current position, else the default city with a notice explaining why.
func (f *WeatherFetcher) Start(ctx context.Context, d view.Display) Outcome {
	logger := observability.LoggerFromContext(ctx, f.logger)

	if city, ok := f.savedCity(ctx); ok {
		return f.startWith(ctx, d, models.CityQuery(city), SourceSaved)
	}

	coords, err := f.locator.Locate(ctx)
	switch {
	case err == nil:
		observability.GeolocationTotal.WithLabelValues("success").Inc()
		return f.startWith(ctx, d, models.CoordinatesQuery(coords.Latitude, coords.Longitude), SourceGeolocation)
	case errors.Is(err, geo.ErrUnsupported):
		observability.GeolocationTotal.WithLabelValues("unsupported").Inc()
		d.Notify(MessageGeolocationUnsupported)
	case errors.Is(err, geo.ErrPermissionDenied):
		observability.GeolocationTotal.WithLabelValues("denied").Inc()
		d.Notify(f.DefaultCityNotice())
	default:
		observability.GeolocationTotal.WithLabelValues("unavailable").Inc()
		d.Notify(f.DefaultCityNotice())
	}
	logger.Info("geolocation unavailable, using default city", zap.String("city", f.defaultCity), zap.Error(err))
	return f.startWith(ctx, d, models.CityQuery(f.defaultCity), SourceDefault)
}

func (f *WeatherFetcher) startWith(ctx context.Context, d view.Display, q models.Query, source string) Outcome {
	observability.StartupSourceTotal.WithLabelValues(source).Inc()
	return f.lookup(ctx, q, source, d)
}

func (f *WeatherFetcher) savedCity(ctx context.Context) (string, bool) {
	if f.history == nil {
		return "", false
	}
	city, ok, err := f.history.LastCity(ctx)
	switch {
	case err != nil:
		observability.HistoryOperationsTotal.WithLabelValues("load", "error").Inc()
		observability.LoggerFromContext(ctx, f.logger).Warn("load last city failed", zap.Error(err))
		return "", false
	case !ok:
		observability.HistoryOperationsTotal.WithLabelValues("load", "miss").Inc()
		return "", false
	}
	observability.HistoryOperationsTotal.WithLabelValues("load", "success").Inc()
	return city, true
}

// titleCase upper-cases the first letter of each word: "new york" → "New York".
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
