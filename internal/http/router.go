package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-widget/internal/observability"
)

// RouterConfig holds the middleware settings for NewRouter.
type RouterConfig struct {
	// Limiter guards the routes that call the weather API. nil disables rate limiting.
	Limiter *rate.Limiter
	// RequestTimeout bounds one lookup. Zero disables the deadline.
	RequestTimeout time.Duration
}

// NewRouter wires every route. Health and metrics skip the rate limiter and timeout.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	lookups := router.NewRoute().Subrouter()
	lookups.Use(RateLimitMiddleware(cfg.Limiter))
	if cfg.RequestTimeout > 0 {
		lookups.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	lookups.HandleFunc("/", h.GetIndex).Methods(http.MethodGet)
	lookups.HandleFunc("/weather", h.GetSearch).Methods(http.MethodGet)
	lookups.HandleFunc("/api/weather/{city}", h.GetWeatherAPI).Methods(http.MethodGet)
	lookups.HandleFunc("/api/weather", h.GetWeatherAPI).Methods(http.MethodGet)
	return router
}
