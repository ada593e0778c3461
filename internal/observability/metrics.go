package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (widget down) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap API call rate by status label. Watch for: client_error spikes (bad key, typos).
	WeatherAPICallsTotal *prometheus.CounterVec

	// External API latency per request.
	WeatherAPIDuration *prometheus.HistogramVec

	// Retry attempts for weather API. Zero unless retries are configured.
	WeatherAPIRetriesTotal prometheus.Counter

	// Weather API errors by category (see client.CategorizeError).
	WeatherAPIErrorsTotal *prometheus.CounterVec

	// Widget lookups by query kind (city, coordinates) and outcome (success, error).
	LookupsTotal *prometheus.CounterVec

	// Which link of the startup chain produced the first lookup: saved, geolocation, default.
	StartupSourceTotal *prometheus.CounterVec

	// Geolocation attempts by result (success, denied, unsupported, unavailable).
	GeolocationTotal *prometheus.CounterVec

	// Last-city store operations by op (load, save, clear) and result (success, miss, error).
	HistoryOperationsTotal *prometheus.CounterVec

	// Rate limit denials on the weather routes.
	RateLimitDeniedTotal prometheus.Counter

	// Circuit breaker transitions. Watch for: flapping between open and half_open.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// Circuit breaker position: 0 closed, 1 open, 2 half_open.
	CircuitBreakerState *prometheus.GaugeVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherAPIRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherApiRetriesTotal",
			Help: "Total number of retry attempts for weather API calls",
		},
	)
	WeatherAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiErrorsTotal",
			Help: "Weather API errors by category",
		},
		[]string{"category"},
	)
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetLookupsTotal",
			Help: "Widget lookups by query kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	StartupSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetStartupSourceTotal",
			Help: "Startup lookups by source (saved, geolocation, default)",
		},
		[]string{"source"},
	)
	GeolocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geolocationRequestsTotal",
			Help: "Geolocation attempts by result",
		},
		[]string{"result"},
	)
	HistoryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historyOperationsTotal",
			Help: "Last-city store operations by op and result",
		},
		[]string{"op", "result"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half_open)",
		},
		[]string{"component"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration, WeatherAPIRetriesTotal, WeatherAPIErrorsTotal,
		LookupsTotal, StartupSourceTotal, GeolocationTotal,
		HistoryOperationsTotal,
		RateLimitDeniedTotal,
		CircuitBreakerTransitionsTotal, CircuitBreakerState,
	)
}

// RecordLookup records the outcome of one widget lookup.
func RecordLookup(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	LookupsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordCircuitBreakerTransition counts a transition and updates the state gauge.
// stateValue follows circuitbreaker.State ordering.
func RecordCircuitBreakerTransition(component, from, to string, stateValue int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(stateValue))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
