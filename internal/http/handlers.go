package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-widget/internal/circuitbreaker"
	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/geo"
	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/service"
	"github.com/kjstillabower/weather-widget/internal/validation"
	"github.com/kjstillabower/weather-widget/internal/view"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	fetcher *service.WeatherFetcher
	store   history.Store
	logger  *zap.Logger

	shuttingDown     atomic.Bool
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. store may be nil; when it implements
// history.Pinger its reachability is reported by /health.
func NewHandler(fetcher *service.WeatherFetcher, store history.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// SetShuttingDown flips /health to shutting-down (503).
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

// GetIndex handles GET /. Runs the startup policy for this visitor.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	ctx := geo.WithClientIP(r.Context(), clientIP(r))
	d := view.NewHTMLDisplay()
	out := h.fetcher.Start(ctx, d)
	writeHTML(w, r, pageStatus(out), d)
}

// GetSearch handles GET /weather?city= and GET /weather?lat=&lon=.
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	d := view.NewHTMLDisplay()
	q, err := queryFromRequest(r)
	if err != nil {
		_ = d.ShowError(err.Error())
		writeHTML(w, r, http.StatusBadRequest, d)
		return
	}
	if !q.ByCoordinates() {
		d.SetQuery(q.City)
	}

	out := h.fetcher.Lookup(r.Context(), q, d)
	writeHTML(w, r, pageStatus(out), d)
}

// pageStatus is 200 for a rendered reading, else the status for out.Err.
// The page body carries the message either way.
func pageStatus(out service.Outcome) int {
	if out.OK() {
		return http.StatusOK
	}
	status, _ := statusForError(out.Err)
	return status
}

// apiResponse is the JSON body of a successful API lookup.
type apiResponse struct {
	Query   models.Query   `json:"query"`
	Summary view.Summary   `json:"summary"`
	Reading models.Reading `json:"reading"`
}

// GetWeatherAPI handles GET /api/weather/{city} and GET /api/weather?lat=&lon=.
func (h *Handler) GetWeatherAPI(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if city, ok := mux.Vars(r)["city"]; ok {
		q = models.CityQuery(city)
	} else {
		var err error
		q, err = queryFromRequest(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
			return
		}
	}

	out := h.fetcher.Lookup(r.Context(), q, view.Discard)
	if !out.OK() {
		status, code := statusForError(out.Err)
		writeError(w, r, status, code, out.Message)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Query: out.Query, Summary: out.Summary, Reading: out.Reading})
}

// queryFromRequest reads lat/lon when either is present, otherwise city.
func queryFromRequest(r *http.Request) (models.Query, error) {
	params := r.URL.Query()
	lat, lon := params.Get("lat"), params.Get("lon")
	if lat != "" || lon != "" {
		la, lo, err := validation.ParseCoordinates(lat, lon)
		if err != nil {
			return models.Query{}, err
		}
		return models.CoordinatesQuery(la, lo), nil
	}
	return models.CityQuery(params.Get("city")), nil
}

// statusForError maps a lookup error to an HTTP status and stable error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrCityEmpty),
		errors.Is(err, validation.ErrCityTooLong),
		errors.Is(err, validation.ErrCityInvalidChars),
		errors.Is(err, validation.ErrInvalidCoordinates):
		return http.StatusBadRequest, "INVALID_QUERY"
	case errors.Is(err, client.ErrLocationNotFound):
		return http.StatusNotFound, "LOCATION_NOT_FOUND"
	case errors.Is(err, client.ErrInvalidAPIKey):
		return http.StatusUnauthorized, "API_KEY_INACTIVE"
	case errors.Is(err, circuitbreaker.ErrOpen), errors.Is(err, client.ErrRateLimited):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	default:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	}
}

// clientIP returns the requesting address for IP geolocation.
// The first X-Forwarded-For hop wins when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, statusCode := "ok", http.StatusOK
	if h.shuttingDown.Load() {
		status, statusCode = "shutting-down", http.StatusServiceUnavailable
	}

	h.healthStatusMu.Lock()
	if prev := h.healthStatusPrev; prev != "" && prev != status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", status))
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if p, ok := h.store.(history.Pinger); ok {
		if err := p.Ping(); err != nil {
			checks["history"] = "unhealthy"
			observability.LoggerFromContext(r.Context(), h.logger).Warn("history store ping failed", zap.Error(err))
		} else {
			checks["history"] = "healthy"
		}
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weather-widget",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeHTML renders the page into a buffer first so a template failure
// can still become a clean 500.
func writeHTML(w http.ResponseWriter, r *http.Request, status int, d *view.HTMLDisplay) {
	var buf bytes.Buffer
	if err := d.Flush(&buf); err != nil {
		observability.LoggerFromContext(r.Context(), nil).Error("render page", zap.Error(err))
		http.Error(w, client.MessageGenericFailure, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}
