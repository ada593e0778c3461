package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
)

// DefaultIPLookupURL is an ip-api.com compatible endpoint. The client IP is appended
// to the path; an empty IP asks about the caller's own address.
const DefaultIPLookupURL = "http://ip-api.com/json/"

// Doer is the subset of *http.Client used by IPLocator.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator estimates position from an IP address. In the HTTP service the
// address of the requesting browser travels in the context (WithClientIP).
type IPLocator struct {
	baseURL string
	client  Doer
}

func NewIPLocator(baseURL string, client Doer) *IPLocator {
	if baseURL == "" {
		baseURL = DefaultIPLookupURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &IPLocator{baseURL: baseURL, client: client}
}

func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	target := l.baseURL
	if ip := ClientIP(ctx); ip != "" {
		target += ip
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	var out ipLookupResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	if out.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrUnavailable, out.Message)
	}
	return models.Coordinates{Latitude: out.Lat, Longitude: out.Lon}, nil
}

type clientIPKey struct{}

// WithClientIP returns ctx carrying the address IPLocator should look up.
// Loopback and private addresses are dropped since no lookup service can place them.
func WithClientIP(ctx context.Context, addr string) context.Context {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip.String())
}

// ClientIP returns the address stored by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
