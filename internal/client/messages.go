package client

import (
	"errors"
	"net/url"

	"github.com/kjstillabower/weather-widget/internal/circuitbreaker"
)

// User-facing messages shown by the widget in place of weather data.
const (
	MessageLocationNotFound = "City not found! Check spelling."
	MessageInvalidAPIKey    = "API Key is not active yet. Wait 10 mins."
	MessageGenericFailure   = "Something went wrong please try again!"
)

// UserMessage maps a lookup error to the single message the widget displays.
// Errors that never reached an HTTP status (network, timeout, decoding) show
// their own text, stripped of the request URL so the API key is not exposed.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLocationNotFound):
		return MessageLocationNotFound
	case errors.Is(err, ErrInvalidAPIKey):
		return MessageInvalidAPIKey
	case errors.Is(err, ErrUpstreamFailure), errors.Is(err, ErrRateLimited), errors.Is(err, circuitbreaker.ErrOpen):
		return MessageGenericFailure
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
