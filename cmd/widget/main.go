// Command widget looks up current weather once and prints it.
//
//	widget                       startup policy: saved city, then location, then default city
//	widget -city "New York"      search by name
//	widget -lat 31.55 -lon 74.34 search by position
//	widget -format html          print the widget page instead of text
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/config"
	"github.com/kjstillabower/weather-widget/internal/geo"
	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/service"
	"github.com/kjstillabower/weather-widget/internal/validation"
	"github.com/kjstillabower/weather-widget/internal/view"
)

const (
	formatText = "text"
	formatHTML = "html"
)

type options struct {
	query  *models.Query // nil runs the startup policy
	format string
}

var errUsage = errors.New("usage")

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	fs.SetOutput(stderr)
	city := fs.String("city", "", "city to look up")
	lat := fs.String("lat", "", "latitude in decimal degrees (with -lon)")
	lon := fs.String("lon", "", "longitude in decimal degrees (with -lat)")
	format := fs.String("format", formatText, "output format: text or html")
	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := options{format: *format}
	if opts.format != formatText && opts.format != formatHTML {
		return options{}, fmt.Errorf("-format must be %s or %s, got %q", formatText, formatHTML, opts.format)
	}

	switch {
	case set["city"] && (set["lat"] || set["lon"]):
		return options{}, errors.New("-city cannot be combined with -lat/-lon")
	case set["lat"] || set["lon"]:
		la, lo, err := validation.ParseCoordinates(*lat, *lon)
		if err != nil {
			return options{}, err
		}
		q := models.CoordinatesQuery(la, lo)
		opts.query = &q
	case set["city"]:
		// Validation, including the empty-name notice, happens in the fetcher.
		q := models.CityQuery(*city)
		opts.query = &q
	}
	return opts, nil
}

// run performs one lookup and returns the process exit code.
func run(ctx context.Context, fetcher *service.WeatherFetcher, opts options, stdout, stderr io.Writer) int {
	var (
		d    view.Display
		page *view.HTMLDisplay
	)
	if opts.format == formatHTML {
		page = view.NewHTMLDisplay()
		d = page
	} else {
		d = view.NewTextDisplay(stdout, stderr)
	}

	var out service.Outcome
	if opts.query == nil {
		out = fetcher.Start(ctx, d)
	} else {
		if page != nil && !opts.query.ByCoordinates() {
			page.SetQuery(opts.query.City)
		}
		out = fetcher.Lookup(ctx, *opts.query, d)
	}

	if page != nil {
		if err := page.Flush(stdout); err != nil {
			fmt.Fprintf(stderr, "render page: %v\n", err)
			return 1
		}
	}
	if !out.OK() {
		return 1
	}
	return 0
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "widget: %v\n", err)
		}
		return 2
	}

	logger, err := observability.NewCLILogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = observability.FlushTelemetry(context.Background(), logger) }()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", zap.Error(err))
		return 1
	}

	weatherClient, err := client.NewOpenWeatherClientWithRetry(
		cfg.WeatherAPIKey,
		cfg.WeatherAPIURL,
		cfg.WeatherAPITimeout,
		cfg.RetryAttempts,
		cfg.RetryBaseDelay,
		cfg.RetryMaxDelay,
	)
	if err != nil {
		logger.Error("weather client", zap.Error(err))
		return 1
	}

	store, err := history.Open(history.Options{
		Backend:               cfg.HistoryBackend,
		FilePath:              cfg.HistoryFilePath,
		SQLitePath:            cfg.HistorySQLitePath,
		MemcachedAddrs:        cfg.MemcachedAddrs,
		MemcachedTimeout:      cfg.MemcachedTimeout,
		MemcachedMaxIdleConns: cfg.MemcachedMaxIdleConns,
	})
	if err != nil {
		logger.Error("history store", zap.Error(err))
		return 1
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	locator, err := geo.New(geo.Options{
		Provider:        cfg.GeolocationProvider,
		Denied:          cfg.GeolocationDenied,
		StaticLatitude:  cfg.StaticLatitude,
		StaticLongitude: cfg.StaticLongitude,
		IPLookupURL:     cfg.IPLookupURL,
	})
	if err != nil {
		logger.Error("geolocation", zap.Error(err))
		return 1
	}

	fetcher := service.NewWeatherFetcher(service.Options{
		Client:        weatherClient,
		History:       store,
		Locator:       locator,
		DefaultCity:   cfg.DefaultCity,
		CityMaxLength: cfg.CityMaxLength,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, fetcher, opts, os.Stdout, os.Stderr)
}
