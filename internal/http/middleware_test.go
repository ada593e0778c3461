package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-widget/internal/history"
	"github.com/kjstillabower/weather-widget/internal/observability"
)

func TestMiddleware_CorrelationIDAssigned(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{reading: karachi()}, history.NewMemoryStore(), nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/weather/karachi", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("X-Correlation-ID header missing")
	}
}

func TestMiddleware_CorrelationIDPropagated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var seen string
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.New(core)))
	router.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		seen = observability.CorrelationID(r.Context())
		observability.LoggerFromContext(r.Context(), nil).Info("probe")
	})

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("X-Correlation-ID", "client-provided-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
	if seen != "client-provided-id" {
		t.Errorf("context correlation ID = %q, want client-provided-id", seen)
	}
	entries := logs.FilterMessage("probe").All()
	if len(entries) != 1 || entries[0].ContextMap()["correlation_id"] != "client-provided-id" {
		t.Errorf("request logger should carry correlation_id, got %v", entries)
	}
}

// TestMiddleware_MetricsUseRouteTemplate verifies path parameters are not used as labels.
func TestMiddleware_MetricsUseRouteTemplate(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{reading: karachi()}, history.NewMemoryStore(), nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/weather/quetta", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	if !strings.Contains(body, `httpRequestsTotal{method="GET",route="/api/weather/{city}",statusCode="2xx"}`) {
		t.Error("metrics should label the lookup by its route template")
	}
	if strings.Contains(body, "quetta") {
		t.Error("metrics should not contain the raw city")
	}
}

func TestTimeoutMiddleware_CancelsContextAfterTimeout(t *testing.T) {
	slow := &mockWeatherClient{reading: karachi(), block: make(chan struct{})}
	defer close(slow.block)
	handler := newTestHandler(slow, history.NewMemoryStore(), nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{RequestTimeout: 50 * time.Millisecond})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/weather/karachi", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d (timeout should surface as an upstream error)", w.Code, http.StatusBadGateway)
	}
	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.Error.Message, "deadline exceeded") {
		t.Errorf("error.message = %q, want the underlying timeout text", body.Error.Message)
	}
}

func TestRateLimitMiddleware_Returns429WhenExceeded(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{reading: karachi()}, history.NewMemoryStore(), nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{Limiter: rate.NewLimiter(1, 2)})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/weather/karachi", nil))

		if i < 2 {
			if w.Code != http.StatusOK {
				t.Errorf("request %d: status = %d, want 200", i, w.Code)
			}
			continue
		}
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("request %d: status = %d, want 429", i, w.Code)
		}
		var body errorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode 429 response: %v", err)
		}
		if body.Error.Code != "RATE_LIMITED" {
			t.Errorf("error.code = %q, want RATE_LIMITED", body.Error.Code)
		}
	}
}

func TestRateLimitMiddleware_SkipsHealth(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{}, history.NewMemoryStore(), nil)
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	limiter.Allow()
	router := NewRouter(handler, zap.NewNop(), RouterConfig{Limiter: limiter})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200 (not rate limited)", w.Code)
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	called := false
	h := RateLimitMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("nil limiter should allow every request")
	}
}

func TestMiddleware_MetricsRoute(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{}, nil, nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	handler := newTestHandler(&mockWeatherClient{}, nil, nil)
	router := NewRouter(handler, zap.NewNop(), RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusCodeString(code); got != want {
			t.Errorf("statusCodeString(%d) = %q, want %q", code, got, want)
		}
	}
}
