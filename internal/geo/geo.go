// Package geo answers "where is the user?" for the widget's startup policy.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kjstillabower/weather-widget/internal/models"
)

var (
	// ErrPermissionDenied means the user (or configuration) refused location access.
	ErrPermissionDenied = errors.New("geolocation permission denied")
	// ErrUnsupported means no location provider is available.
	ErrUnsupported = errors.New("geolocation not supported")
	// ErrUnavailable means the provider was asked but could not produce a position.
	ErrUnavailable = errors.New("geolocation unavailable")
)

// Provider names accepted by New.
const (
	ProviderIP     = "ip"
	ProviderStatic = "static"
	ProviderNone   = "none"
)

// Locator resolves the current position.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// Options configures New.
type Options struct {
	Provider string
	// Denied makes every Locate call fail with ErrPermissionDenied.
	Denied bool

	StaticLatitude  float64
	StaticLongitude float64

	IPLookupURL string
	HTTPClient  Doer
}

// New builds the Locator described by opts.
func New(opts Options) (Locator, error) {
	var loc Locator
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderIP:
		loc = NewIPLocator(opts.IPLookupURL, opts.HTTPClient)
	case ProviderStatic:
		s, err := NewStaticLocator(opts.StaticLatitude, opts.StaticLongitude)
		if err != nil {
			return nil, err
		}
		loc = s
	case "", ProviderNone:
		loc = Unsupported{}
	default:
		return nil, fmt.Errorf("geo: unknown provider %q", opts.Provider)
	}
	if opts.Denied {
		loc = Denied{}
	}
	return loc, nil
}

// Unsupported is the Locator for environments with no location source.
type Unsupported struct{}

func (Unsupported) Locate(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrUnsupported
}

// Denied is the Locator used when location access is refused.
type Denied struct{}

func (Denied) Locate(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrPermissionDenied
}

// Func adapts a function to Locator.
type Func func(ctx context.Context) (models.Coordinates, error)

func (f Func) Locate(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}
